package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/internal/app/repository"
	"github.com/booktime/booktime/internal/importer"
	"github.com/booktime/booktime/pkg/logger"
	"github.com/booktime/booktime/pkg/util"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ImportReport counts what an import touched. Processed counters include
// rows that matched existing records; created counters only new ones.
type ImportReport struct {
	ProductsProcessed int
	ProductsCreated   int
	TagsProcessed     int
	TagsCreated       int
	ImagesProcessed   int
	Warnings          []string
}

func (r *ImportReport) String() string {
	return fmt.Sprintf(
		"Products processed=%d (created=%d)\nTags processed=%d (created=%d)\nImages processed=%d\n",
		r.ProductsProcessed, r.ProductsCreated,
		r.TagsProcessed, r.TagsCreated,
		r.ImagesProcessed,
	)
}

type ImportService interface {
	Import(ctx context.Context, source, imageDir string) (*ImportReport, error)
	ImportRows(ctx context.Context, rows []importer.Row, source, imageDir string) (*ImportReport, error)
	RecentRuns(limit int) ([]model.ImportRun, error)
}

type importService struct {
	productRepo   repository.ProductRepository
	tagRepo       repository.ProductTagRepository
	importRunRepo repository.ImportRunRepository
	images        ProductImageService
	log           *logger.Logger
}

func NewImportService(
	productRepo repository.ProductRepository,
	tagRepo repository.ProductTagRepository,
	importRunRepo repository.ImportRunRepository,
	images ProductImageService,
) ImportService {
	return &importService{
		productRepo:   productRepo,
		tagRepo:       tagRepo,
		importRunRepo: importRunRepo,
		images:        images,
		log:           logger.Named("import"),
	}
}

// touchedProduct remembers a product seen in the file and the image names its row listed.
type touchedProduct struct {
	product    *model.Product
	imageNames []string
}

func (s *importService) Import(ctx context.Context, source, imageDir string) (*ImportReport, error) {
	rows, err := importer.ReadFile(source)
	if err != nil {
		s.log.Error("Failed to read import file", err, map[string]interface{}{
			"source": source,
		})
		return nil, err
	}
	return s.ImportRows(ctx, rows, source, imageDir)
}

// ImportRows upserts products and their tags row by row, then attaches images for
// every product touched. Malformed rows are skipped with a warning.
func (s *importService) ImportRows(ctx context.Context, rows []importer.Row, source, imageDir string) (*ImportReport, error) {
	started := time.Now()
	report := &ImportReport{}

	s.log.Info("Import started", map[string]interface{}{
		"source":    source,
		"image_dir": imageDir,
		"rows":      len(rows),
	})

	var touched []*touchedProduct
	seen := make(map[uint]*touchedProduct)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := row.Parse()
		if err == nil {
			err = validateRecord(&rec)
		}
		if err != nil {
			s.warn(report, rec.Line, err)
			continue
		}

		// tags are only counted for rows whose product was stored
		product, err := s.upsertProduct(report, rec)
		if err != nil {
			if errors.Is(err, ErrSlugTaken) {
				s.warn(report, rec.Line, err)
				continue
			}
			return nil, err
		}
		tags, err := s.upsertTags(report, rec)
		if err != nil {
			return nil, err
		}
		if err := s.productRepo.AppendTags(product, tags); err != nil {
			return nil, err
		}

		tp, ok := seen[product.ID]
		if !ok {
			tp = &touchedProduct{product: product}
			seen[product.ID] = tp
			touched = append(touched, tp)
		}
		tp.imageNames = append(tp.imageNames, rec.ImageFilenames...)
	}

	for _, tp := range touched {
		if err := s.attachImages(ctx, report, tp, imageDir); err != nil {
			return nil, err
		}
	}

	run := &model.ImportRun{
		Source:            source,
		ImageDir:          imageDir,
		ProductsProcessed: report.ProductsProcessed,
		ProductsCreated:   report.ProductsCreated,
		TagsProcessed:     report.TagsProcessed,
		TagsCreated:       report.TagsCreated,
		ImagesProcessed:   report.ImagesProcessed,
		Warnings:          pq.StringArray(report.Warnings),
		StartedAt:         started,
		FinishedAt:        time.Now(),
	}
	if err := s.importRunRepo.Create(run); err != nil {
		return nil, err
	}

	s.log.Info("Import finished", map[string]interface{}{
		"import_run_id":      run.ID,
		"products_processed": report.ProductsProcessed,
		"products_created":   report.ProductsCreated,
		"tags_processed":     report.TagsProcessed,
		"tags_created":       report.TagsCreated,
		"images_processed":   report.ImagesProcessed,
		"warnings":           len(report.Warnings),
	})
	return report, nil
}

func (s *importService) RecentRuns(limit int) ([]model.ImportRun, error) {
	return s.importRunRepo.ListRecent(limit)
}

func validateRecord(rec *importer.Record) error {
	if len([]rune(rec.Name)) > maxNameLength {
		return ErrInvalidName
	}
	if rec.Slug == "" {
		rec.Slug = util.Slugify(rec.Name)
	}
	if !util.IsValidSlug(rec.Slug) {
		return ErrInvalidSlug
	}
	return ValidatePrice(rec.Price)
}

func (s *importService) upsertTags(report *ImportReport, rec importer.Record) ([]model.ProductTag, error) {
	tags := make([]model.ProductTag, 0, len(rec.Tags))
	for _, name := range rec.Tags {
		slug := util.Slugify(name)
		if slug == "" || len([]rune(name)) > maxNameLength {
			s.warn(report, rec.Line, fmt.Errorf("tag %q: %w", name, ErrInvalidName))
			continue
		}

		report.TagsProcessed++
		tag, err := s.tagRepo.FindBySlug(slug)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			tag = &model.ProductTag{Name: name, Slug: slug, Active: true}
			if err := s.tagRepo.Create(tag); err != nil {
				return nil, err
			}
			report.TagsCreated++
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func (s *importService) upsertProduct(report *ImportReport, rec importer.Record) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(rec.Slug)
	switch {
	case err == nil:
		product.Name = rec.Name
		product.Description = rec.Description
		product.Price = rec.Price
		product.InStock = rec.InStock
		if err := s.productRepo.Update(product); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		product = &model.Product{
			Name:        rec.Name,
			Slug:        rec.Slug,
			Description: rec.Description,
			Price:       rec.Price,
			Active:      true,
			InStock:     rec.InStock,
		}
		if err := s.productRepo.Create(product); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrSlugTaken
			}
			return nil, err
		}
		report.ProductsCreated++
	default:
		return nil, err
	}

	report.ProductsProcessed++
	return product, nil
}

// attachImages uses the file names listed in the file when present, otherwise
// every image in imageDir named after the product slug.
func (s *importService) attachImages(ctx context.Context, report *ImportReport, tp *touchedProduct, imageDir string) error {
	var paths []string
	if len(tp.imageNames) > 0 {
		for _, name := range tp.imageNames {
			paths = append(paths, filepath.Join(imageDir, filepath.Base(name)))
		}
	} else {
		found, err := importer.FindImages(imageDir, tp.product.Slug)
		if err != nil {
			return err
		}
		paths = found
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			s.warn(report, 0, fmt.Errorf("product %s: %w", tp.product.Slug, err))
			continue
		}
		report.ImagesProcessed++

		_, err = s.images.Attach(ctx, tp.product.ID, filepath.Base(p), data)
		switch {
		case err == nil:
		case errors.Is(err, ErrImageAlreadyExists):
			s.log.Debug("Image already attached, skipping", map[string]interface{}{
				"product_id": tp.product.ID,
				"file":       filepath.Base(p),
			})
		case errors.Is(err, ErrUnsupportedImage), errors.Is(err, ErrImageTooLarge):
			s.warn(report, 0, fmt.Errorf("image %s: %w", filepath.Base(p), err))
		default:
			return err
		}
	}
	return nil
}

func (s *importService) warn(report *ImportReport, line int, err error) {
	msg := err.Error()
	if line > 0 {
		msg = fmt.Sprintf("line %d: %s", line, msg)
	}
	report.Warnings = append(report.Warnings, msg)
	s.log.Warn("Import warning", map[string]interface{}{
		"line":  line,
		"error": err.Error(),
	})
}
