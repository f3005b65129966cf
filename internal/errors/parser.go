package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps a repository or service error onto a public code and
// message without leaking database details.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "A server error occurred",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    notFoundCode(context),
			Message: getNotFoundMessage(context),
		}
	}

	// postgres 23505 and sqlite "UNIQUE constraint failed"
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(errStrLower, "duplicate key") ||
		strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}

	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStrLower, context)
	}

	if strings.Contains(errStrLower, "not-null constraint") || strings.Contains(errStrLower, "not null constraint") {
		return parseNotNullError(errStrLower)
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "An upstream service is unavailable, please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "A user with that email already exists"}
	case strings.Contains(errLower, "product_tags") && strings.Contains(errLower, "slug"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "A tag with that slug already exists"}
	case strings.Contains(errLower, "slug"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "A product with that slug already exists"}
	case strings.Contains(errLower, "basket_lines"):
		return ErrorInfo{Code: ResourceConflict, Message: "This product is already in the basket"}
	case strings.Contains(errLower, "groups") || strings.Contains(errLower, "name"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "An entry with that name already exists"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "This entry already exists"}
}

func parseForeignKeyError(errLower string, context string) ErrorInfo {
	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "This " + contextNoun(context) + " is still referenced and cannot be deleted",
		}
	}
	if strings.Contains(errLower, "product_id") {
		return ErrorInfo{Code: ProductNotFound, Message: "Product does not exist"}
	}
	if strings.Contains(errLower, "user_id") {
		return ErrorInfo{Code: ResourceNotFound, Message: "User does not exist"}
	}
	return ErrorInfo{Code: ResourceNotFound, Message: "Referenced entry does not exist"}
}

func parseNotNullError(errLower string) ErrorInfo {
	for _, field := range []string{"email", "password", "name", "slug", "price"} {
		if strings.Contains(errLower, field) {
			return ErrorInfo{Code: ValidationRequired, Message: "The " + field + " field is required"}
		}
	}
	return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
}

func notFoundCode(context string) string {
	switch contextNoun(context) {
	case "product":
		return ProductNotFound
	case "tag":
		return TagNotFound
	case "image":
		return ImageNotFound
	case "address":
		return AddressNotFound
	}
	return ResourceNotFound
}

func getNotFoundMessage(context string) string {
	noun := contextNoun(context)
	if noun == "" {
		return "No entry matches the given query"
	}
	return "No " + noun + " matches the given query"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "create"), strings.Contains(contextLower, "add"):
		return "Failed to create the entry, please try again later"
	case strings.Contains(contextLower, "update"):
		return "Failed to update the entry, please try again later"
	case strings.Contains(contextLower, "delete"):
		return "Failed to delete the entry, please try again later"
	case strings.Contains(contextLower, "import"):
		return "The import failed, please check the source file"
	}
	return "A server error occurred, please try again later"
}

func contextNoun(context string) string {
	contextLower := strings.ToLower(context)
	for _, noun := range []string{"image", "tag", "product", "address", "basket", "user"} {
		if strings.Contains(contextLower, noun) {
			return noun
		}
	}
	return ""
}

// ParseAndRespond writes the parsed error as JSON with the given status.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
