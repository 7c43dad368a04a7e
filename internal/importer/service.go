package importer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lucaramirezo/products-ga/internal/purchases"
	"github.com/lucaramirezo/products-ga/internal/suppliers"
	"github.com/lucaramirezo/products-ga/pkg/enums"
	pkgerrors "github.com/lucaramirezo/products-ga/pkg/errors"
	"github.com/lucaramirezo/products-ga/pkg/metrics"
)

// Row is one already-decoded spreadsheet line. Parsing the file format
// is the caller's problem; this service only understands the normalized
// shape.
type Row struct {
	RowNumber     int      `json:"row_number"`
	SupplierName  string   `json:"supplier_name"`
	InvoiceNo     string   `json:"invoice_no"`
	Date          string   `json:"date"`
	Currency      string   `json:"currency"`
	SKU           *string  `json:"sku"`
	Description   string   `json:"description"`
	UnitType      string   `json:"unit_type"`
	Units         float64  `json:"units"`
	Width         *float64 `json:"width"`
	Height        *float64 `json:"height"`
	UOM           string   `json:"uom"`
	UnitCost      float64  `json:"unit_cost"`
	GeneratePrice bool     `json:"generate_price"`
}

// RowError points at the offending row and field.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result summarizes one import run.
type Result struct {
	DryRun    bool       `json:"dry_run"`
	Rows      int        `json:"rows"`
	Purchases int        `json:"purchases"`
	Items     int        `json:"items"`
	Entries   int        `json:"entries"`
	Errors    []RowError `json:"errors"`
}

// Service turns normalized rows into purchases.
type Service interface {
	Import(ctx context.Context, rows []Row, commit bool) (*Result, error)
}

type service struct {
	suppliers suppliers.Service
	purchases purchases.Service
	jobs      *metrics.JobMetrics
}

// NewService wires the importer. The job metrics are optional; a nil
// value disables instrumentation.
func NewService(supplierSvc suppliers.Service, purchaseSvc purchases.Service, jobs *metrics.JobMetrics) (Service, error) {
	if supplierSvc == nil {
		return nil, fmt.Errorf("suppliers service required")
	}
	if purchaseSvc == nil {
		return nil, fmt.Errorf("purchases service required")
	}
	return &service{suppliers: supplierSvc, purchases: purchaseSvc, jobs: jobs}, nil
}

// dateLayout is the normalized row date format.
const dateLayout = "2006-01-02"

type parsedRow struct {
	row  Row
	date time.Time
	item purchases.CreateItemInput
}

type invoiceKey struct {
	supplier string
	invoice  string
}

// importJob labels the purchase import in job metrics.
const importJob = "purchase_import"

// Import validates every row first and groups the valid ones into one
// purchase per supplier+invoice pair. Any row error aborts the run before
// a single write, commit mode included; dry-run mode never writes.
func (s *service) Import(ctx context.Context, rows []Row, commit bool) (*Result, error) {
	start := time.Now()
	result, err := s.run(ctx, rows, commit)
	s.jobs.ObserveDuration(importJob, time.Since(start))
	if err != nil || (result != nil && len(result.Errors) > 0) {
		s.jobs.IncFailure(importJob)
	} else {
		s.jobs.IncSuccess(importJob)
	}
	return result, err
}

func (s *service) run(ctx context.Context, rows []Row, commit bool) (*Result, error) {
	result := &Result{DryRun: !commit, Rows: len(rows)}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, RowError{Row: 0, Field: "rows", Message: "no rows to import"})
		return result, nil
	}

	groups := map[invoiceKey][]parsedRow{}
	var order []invoiceKey

	for _, row := range rows {
		parsed, errs := s.parseRow(ctx, row)
		if len(errs) > 0 {
			result.Errors = append(result.Errors, errs...)
			continue
		}
		key := invoiceKey{
			supplier: strings.ToLower(strings.TrimSpace(row.SupplierName)),
			invoice:  strings.TrimSpace(row.InvoiceNo),
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], *parsed)
	}

	if len(result.Errors) > 0 {
		sort.Slice(result.Errors, func(i, j int) bool { return result.Errors[i].Row < result.Errors[j].Row })
		return result, nil
	}

	for _, key := range order {
		group := groups[key]
		result.Purchases++
		result.Items += len(group)
		if !commit {
			for _, parsed := range group {
				if parsed.item.GeneratePrice && parsed.item.ProductSKU != nil {
					result.Entries++
				}
			}
			continue
		}

		supplier, err := s.suppliers.GetByName(ctx, group[0].row.SupplierName)
		if err != nil {
			return nil, err
		}

		items := make([]purchases.CreateItemInput, 0, len(group))
		subtotal := decimal.Zero
		for _, parsed := range group {
			items = append(items, parsed.item)
			line := decimal.NewFromFloat(parsed.item.Units).Mul(decimal.NewFromFloat(parsed.item.UnitCost))
			subtotal = subtotal.Add(line)
		}

		created, err := s.purchases.Create(ctx, purchases.CreateInput{
			InvoiceNo:  key.invoice,
			SupplierID: supplier.ID,
			Date:       group[0].date,
			Currency:   group[0].row.Currency,
			Subtotal:   subtotal.InexactFloat64(),
			Items:      items,
		})
		if err != nil {
			return nil, err
		}
		result.Entries += len(created.Entries)
	}

	return result, nil
}

func (s *service) parseRow(ctx context.Context, row Row) (*parsedRow, []RowError) {
	var errs []RowError
	add := func(field, message string) {
		errs = append(errs, RowError{Row: row.RowNumber, Field: field, Message: message})
	}

	supplierName := strings.TrimSpace(row.SupplierName)
	if supplierName == "" {
		add("supplier_name", "is required")
	} else if _, err := s.suppliers.GetByName(ctx, supplierName); err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			add("supplier_name", "unknown supplier "+supplierName)
		} else {
			add("supplier_name", "supplier lookup failed")
		}
	}

	if strings.TrimSpace(row.InvoiceNo) == "" {
		add("invoice_no", "is required")
	}

	var date time.Time
	if strings.TrimSpace(row.Date) == "" {
		add("date", "is required")
	} else {
		parsed, err := time.Parse(dateLayout, strings.TrimSpace(row.Date))
		if err != nil {
			add("date", "must look like 2024-01-31")
		} else if parsed.After(time.Now()) {
			add("date", "cannot be in the future")
		} else {
			date = parsed
		}
	}

	if strings.TrimSpace(row.Currency) == "" {
		add("currency", "is required")
	}

	unitType, err := enums.ParseUnitType(strings.TrimSpace(row.UnitType))
	if err != nil {
		add("unit_type", "must be sheet, roll or flat_area")
	}

	uom := enums.UOMFeet
	if strings.TrimSpace(row.UOM) != "" {
		uom, err = enums.ParseUOM(strings.TrimSpace(row.UOM))
		if err != nil {
			add("uom", "must be ft, in, m or cm")
		}
	}

	if row.Units <= 0 {
		add("units", "must be greater than zero")
	}
	if row.UnitCost < 0 {
		add("unit_cost", "must be zero or greater")
	}
	if unitType == enums.UnitTypeSheet {
		if row.Width == nil || *row.Width <= 0 {
			add("width", "required for sheet rows")
		}
		if row.Height == nil || *row.Height <= 0 {
			add("height", "required for sheet rows")
		}
	}

	var sku *string
	if row.SKU != nil && strings.TrimSpace(*row.SKU) != "" {
		trimmed := strings.TrimSpace(*row.SKU)
		sku = &trimmed
	}
	if row.GeneratePrice && sku == nil {
		add("sku", "required when generate_price is set")
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &parsedRow{
		row:  row,
		date: date,
		item: purchases.CreateItemInput{
			ProductSKU:    sku,
			Description:   strings.TrimSpace(row.Description),
			UnitType:      unitType,
			Units:         row.Units,
			Width:         row.Width,
			Height:        row.Height,
			UOM:           uom,
			UnitCost:      row.UnitCost,
			GeneratePrice: row.GeneratePrice,
		},
	}, nil
}
