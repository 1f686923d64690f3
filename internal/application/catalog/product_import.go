package catalog

import (
	"context"
	"errors"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/csvimport"
	"go.uber.org/zap"
)

const (
	// MaxImportRows bounds one upload
	MaxImportRows = 5000
	// maxImportErrors bounds the errors returned to the caller
	maxImportErrors = 100
)

// ConflictMode decides what happens to rows whose slug or SKU already exists
type ConflictMode string

const (
	ConflictModeSkip ConflictMode = "skip"
	ConflictModeFail ConflictMode = "fail"
)

// ImportProductsRequest controls a CSV import
type ImportProductsRequest struct {
	ConflictMode ConflictMode
	// DryRun validates every row without writing
	DryRun bool
}

// ImportProductsResult summarizes a CSV import
type ImportProductsResult struct {
	TotalRows    int                  `json:"total_rows"`
	ImportedRows int                  `json:"imported_rows"`
	SkippedRows  int                  `json:"skipped_rows"`
	ErrorRows    int                  `json:"error_rows"`
	DryRun       bool                 `json:"dry_run"`
	Errors       []csvimport.RowError `json:"errors"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors"`
}

// ProductImportService creates products from CSV rows. Rows are
// independent: a bad row is reported and the rest still import.
type ProductImportService struct {
	products     *ProductService
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	logger       *zap.Logger
}

// NewProductImportService creates a new ProductImportService
func NewProductImportService(
	products *ProductService,
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	logger *zap.Logger,
) *ProductImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductImportService{
		products:     products,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// ImportColumns lists the accepted CSV columns; name and price are required
func ImportColumns() []string {
	return []string{
		"name", "slug", "sku", "description", "price", "compare_at_price",
		"stock_quantity", "category", "image_url", "featured", "active",
	}
}

func importRules() *csvimport.Validator {
	zero := decimal.Zero
	return csvimport.NewValidator(
		csvimport.Field("name").Required().MaxLength(200).Build(),
		csvimport.Field("slug").MaxLength(120).Unique().Build(),
		csvimport.Field("sku").MaxLength(64).Unique().Build(),
		csvimport.Field("description").MaxLength(5000).Build(),
		csvimport.Field("price").Required().Decimal().Min(zero).Build(),
		csvimport.Field("compare_at_price").Decimal().Min(zero).Build(),
		csvimport.Field("stock_quantity").Int().Min(zero).Build(),
		csvimport.Field("category").MaxLength(120).Build(),
		csvimport.Field("image_url").MaxLength(500).Build(),
		csvimport.Field("featured").Bool().Build(),
		csvimport.Field("active").Bool().Build(),
	)
}

// Import reads a CSV upload and creates one product per valid row.
// File-level problems (encoding, header, size) fail the whole import.
func (s *ProductImportService) Import(ctx context.Context, r io.Reader, req ImportProductsRequest) (*ImportProductsResult, error) {
	if req.ConflictMode == "" {
		req.ConflictMode = ConflictModeSkip
	}
	if req.ConflictMode != ConflictModeSkip && req.ConflictMode != ConflictModeFail {
		return nil, shared.NewDomainError("INVALID_CONFLICT_MODE", "conflict_mode must be skip or fail")
	}

	validator := importRules()
	rows, err := csvimport.ReadAll(r, MaxImportRows, validator.Columns()...)
	if err != nil {
		return nil, importFileError(err)
	}

	result := &ImportProductsResult{TotalRows: len(rows), DryRun: req.DryRun}
	errs := csvimport.NewErrorList(maxImportErrors)
	categories := make(map[string]uuid.UUID)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if rowErrs := validator.Validate(row); len(rowErrs) > 0 {
			errs.Add(rowErrs...)
			result.ErrorRows++
			continue
		}

		productReq, rowErr, err := s.toRequest(ctx, row, categories)
		if err != nil {
			return nil, err
		}
		if rowErr != nil {
			errs.Add(*rowErr)
			result.ErrorRows++
			continue
		}

		outcome, rowErr, err := s.importRow(ctx, row, productReq, req)
		if err != nil {
			return nil, err
		}
		switch {
		case rowErr != nil:
			errs.Add(*rowErr)
			result.ErrorRows++
		case outcome == rowSkipped:
			result.SkippedRows++
		default:
			result.ImportedRows++
		}
	}

	result.Errors = errs.Errors()
	result.IsTruncated = errs.Truncated()
	result.TotalErrors = errs.Total()

	s.logger.Info("Product import finished",
		zap.Int("total", result.TotalRows),
		zap.Int("imported", result.ImportedRows),
		zap.Int("skipped", result.SkippedRows),
		zap.Int("errors", result.ErrorRows),
		zap.Bool("dry_run", req.DryRun),
	)
	return result, nil
}

type rowOutcome int

const (
	rowImported rowOutcome = iota
	rowSkipped
)

// toRequest converts a validated row. A returned RowError rejects the row;
// a returned error aborts the import.
func (s *ProductImportService) toRequest(ctx context.Context, row *csvimport.Row, categories map[string]uuid.UUID) (CreateProductRequest, *csvimport.RowError, error) {
	req := CreateProductRequest{
		Name:        row.Get("name"),
		Slug:        row.Get("slug"),
		SKU:         row.Get("sku"),
		Description: row.Get("description"),
		ImageURL:    row.Get("image_url"),
	}
	req.Price, _ = decimal.NewFromString(row.Get("price"))
	if v := row.Get("compare_at_price"); v != "" {
		d, _ := decimal.NewFromString(v)
		req.CompareAtPrice = &d
	}
	if v := row.Get("stock_quantity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, &csvimport.RowError{Row: row.Line, Column: "stock_quantity", Code: csvimport.CodeInvalidRange, Message: "value is too large", Value: v}, nil
		}
		req.StockQuantity = n
	}
	if v := row.Get("featured"); v != "" {
		req.Featured, _ = csvimport.ParseBool(v)
	}
	if v := row.Get("active"); v != "" {
		active, _ := csvimport.ParseBool(v)
		req.Active = &active
	}

	if slug := row.Get("category"); slug != "" {
		id, ok := categories[slug]
		if !ok {
			category, err := s.categoryRepo.FindBySlug(ctx, slug)
			if errors.Is(err, shared.ErrNotFound) {
				return req, &csvimport.RowError{Row: row.Line, Column: "category", Code: csvimport.CodeReferenceNotFound, Message: "category not found", Value: slug}, nil
			}
			if err != nil {
				return req, nil, err
			}
			id = category.ID
			categories[slug] = id
		}
		req.CategoryID = &id
	}
	return req, nil, nil
}

func (s *ProductImportService) importRow(ctx context.Context, row *csvimport.Row, productReq CreateProductRequest, req ImportProductsRequest) (rowOutcome, *csvimport.RowError, error) {
	var err error
	if req.DryRun {
		err = s.check(ctx, productReq)
	} else {
		_, err = s.products.Create(ctx, productReq)
	}
	if err == nil {
		return rowImported, nil, nil
	}

	if errors.Is(err, shared.ErrAlreadyExists) {
		if req.ConflictMode == ConflictModeSkip {
			return rowSkipped, nil, nil
		}
		return rowImported, &csvimport.RowError{Row: row.Line, Code: csvimport.CodeDuplicateInDB, Message: domainMessage(err)}, nil
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return rowImported, &csvimport.RowError{Row: row.Line, Code: domainErr.Code, Message: domainErr.Message}, nil
	}
	return rowImported, nil, err
}

// check runs the validations Create would, without writing
func (s *ProductImportService) check(ctx context.Context, req CreateProductRequest) error {
	product, err := catalog.NewProduct(req.Name, req.Slug, req.Price)
	if err != nil {
		return err
	}
	if req.SKU != "" {
		if err := product.SetSKU(req.SKU); err != nil {
			return err
		}
	}
	if req.CompareAtPrice != nil {
		if err := product.SetPricing(req.Price, req.CompareAtPrice); err != nil {
			return err
		}
	}
	if req.ImageURL != "" {
		if err := product.SetImage("", req.ImageURL); err != nil {
			return err
		}
	}
	if err := s.products.ensureSlugAvailable(ctx, product.Slug); err != nil {
		return err
	}
	if req.SKU != "" {
		return s.products.ensureSKUAvailable(ctx, product.SKUValue())
	}
	return nil
}

func domainMessage(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

func importFileError(err error) error {
	var missing *csvimport.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		return shared.NewDomainErrorWithCause("INVALID_IMPORT_FILE", missing.Error(), err)
	case errors.Is(err, csvimport.ErrEmptyFile),
		errors.Is(err, csvimport.ErrMissingHeader),
		errors.Is(err, csvimport.ErrNoDataRows):
		return shared.NewDomainErrorWithCause("INVALID_IMPORT_FILE", err.Error(), err)
	case errors.Is(err, csvimport.ErrTooManyRows):
		return shared.NewDomainErrorWithCause("IMPORT_TOO_LARGE", "CSV file has more than the allowed number of rows", err)
	default:
		return shared.NewDomainErrorWithCause("INVALID_IMPORT_FILE", "CSV file could not be parsed", err)
	}
}
