package errors

// Error codes returned in the "error" field of JSON error bodies.
// Format: CATEGORY_SPECIFIC_DETAIL

const (
	// Authentication
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthInactiveAccount    = "AUTH_INACTIVE_ACCOUNT"

	// Authorization
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzStaffOnly    = "AUTHZ_STAFF_ONLY"
	AuthzSuperuser    = "AUTHZ_SUPERUSER_ONLY"
	AuthzReadOnlySite = "AUTHZ_READ_ONLY_SITE"

	// Validation
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidSlug  = "VALIDATION_INVALID_SLUG"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// Resources
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// Catalog
	ProductNotFound = "PRODUCT_NOT_FOUND"
	TagNotFound     = "TAG_NOT_FOUND"
	ImageNotFound   = "IMAGE_NOT_FOUND"

	// Basket and addresses
	BasketEmpty     = "BASKET_EMPTY"
	AddressNotFound = "ADDRESS_NOT_FOUND"

	// Uploads and imports
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"
	ImportFailed          = "IMPORT_FAILED"

	// Internal
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
