package export

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mmdatafocus/studio_backend/models"
	"github.com/mmdatafocus/studio_backend/utils"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	contentTypeJSON = "application/json"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Write stores the snapshot at output and returns where it went. gs:// paths are
// uploaded to Cloud Storage, .xlsx files get one sheet per table and anything
// else is written as JSON.
func Write(ctx context.Context, snapshot *Snapshot, output string) (string, error) {
	if strings.TrimSpace(output) == "" {
		return "", utils.NewValidationError("output", output, "output path is required")
	}
	xlsx := strings.EqualFold(filepath.Ext(output), ".xlsx")

	if utils.IsGCSPath(output) {
		data, contentType, err := encode(snapshot, xlsx)
		if err != nil {
			return "", err
		}
		return utils.UploadToGCS(ctx, output, data, contentType)
	}
	if xlsx {
		return WriteXLSX(snapshot, output)
	}
	return WriteJSON(snapshot, output)
}

func encode(snapshot *Snapshot, xlsx bool) ([]byte, string, error) {
	if !xlsx {
		b, err := utils.MarshalIndentJSON(snapshot)
		return b, contentTypeJSON, err
	}
	f, err := Workbook(snapshot)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", errors.Wrap(err, "xlsx encode")
	}
	return buf.Bytes(), contentTypeXLSX, nil
}

// WriteJSON writes the snapshot as indented UTF-8 JSON and returns the absolute path.
func WriteJSON(snapshot *Snapshot, path string) (string, error) {
	return utils.WriteJSONFile(path, snapshot)
}

func WriteXLSX(snapshot *Snapshot, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", path)
	}
	f, err := Workbook(snapshot)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := f.SaveAs(abs); err != nil {
		return "", errors.Wrapf(err, "save %s", abs)
	}
	return abs, nil
}

type sheet struct {
	name string
	rows any
}

func sheets(s *Snapshot) []sheet {
	u := s.UserData
	return []sheet{
		{"reference_product_types", s.ReferenceData.ProductTypes},
		{"reference_material_types", s.ReferenceData.MaterialTypes},
		{models.TableProductTypes, u.ProductTypes},
		{models.TableMaterialTypes, u.MaterialTypes},
		{models.TableUserPreferences, u.UserPreferences},
		{models.TableMaterialsAndSupplies, u.MaterialsAndSupplies},
		{models.TableGoods, u.Goods},
		{models.TableMaterialOutputRatios, u.MaterialOutputRatios},
		{models.TableProductionBatches, u.ProductionBatches},
		{models.TableSales, u.Sales},
		{models.TableSaleDetails, u.SaleDetails},
		{models.TableStudioOverheadExpenses, u.StudioOverheadExpenses},
		{models.TableOperationalExpenses, u.OperationalExpenses},
		{models.TableMaterialInventoryTransactions, u.MaterialInventoryTransactions},
	}
}

const metadataSheet = "metadata"

// Workbook lays the snapshot out as a spreadsheet: a metadata sheet followed by
// one sheet per table with the JSON field names as the header row.
func Workbook(s *Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", metadataSheet); err != nil {
		return nil, errors.Wrap(err, "xlsx metadata sheet")
	}
	meta := [][]any{
		{"exportedAt", s.Metadata.ExportedAt},
		{"sourceUserId", s.Metadata.SourceUserID},
		{"month", s.Metadata.Month},
		{"recordCount", s.Metadata.RecordCount},
		{"version", s.Metadata.Version},
	}
	for i, row := range meta {
		if err := setRow(f, metadataSheet, i+1, row); err != nil {
			return nil, err
		}
	}

	for _, sh := range sheets(s) {
		records, err := toRecords(sh.rows)
		if err != nil {
			return nil, errors.WithMessage(err, sh.name)
		}
		if _, err := f.NewSheet(sh.name); err != nil {
			return nil, errors.Wrapf(err, "xlsx sheet %s", sh.name)
		}
		header := columns(records)
		headerRow := make([]any, len(header))
		for i, h := range header {
			headerRow[i] = h
		}
		if err := setRow(f, sh.name, 1, headerRow); err != nil {
			return nil, err
		}
		for i, rec := range records {
			row := make([]any, len(header))
			for j, h := range header {
				row[j] = cellValue(rec[h])
			}
			if err := setRow(f, sh.name, i+2, row); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

func setRow(f *excelize.File, sheetName string, rowNo int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return errors.Wrapf(err, "xlsx %s row %d", sheetName, rowNo)
	}
	return nil
}

// toRecords turns a slice of models into field maps keyed by their JSON names.
func toRecords(rows any) ([]map[string]any, error) {
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, errors.Wrap(err, "json encode")
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out []map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, errors.Wrap(err, "json decode")
	}
	return out, nil
}

// columns puts id first and the rest in name order.
func columns(records []map[string]any) []string {
	seen := map[string]bool{}
	var out []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i] == "id" || out[j] == "id" {
			return out[i] == "id"
		}
		return out[i] < out[j]
	})
	if len(out) == 0 {
		return []string{"id"}
	}
	return out
}

func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case json.Number:
		return x.String()
	case map[string]any, []any:
		b, _ := json.Marshal(x)
		return string(b)
	default:
		return x
	}
}
