package catalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/saintfish/chardet"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/specs"
	apperrors "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/errors"
)

// Column aliases accepted in sheet headers, compared lower-cased.
var columnAliases = map[string]string{
	"itemid":            "id",
	"id":                "id",
	"epid":              "id",
	"title":             "title",
	"epidtitle":         "title",
	"itemspecifics":     "specs",
	"productidentifier": "specs",
	"specs":             "specs",
	"description":       "description",
	"productdetails":    "description",
	"galleryurl":        "gallery",
	"pictureurl":        "pictures",
}

// LoadTabular reads a product sheet (.csv, .xls or .xlsx). The header row
// names the columns; specifics use the `'key': 'value';` form and picture
// URLs are separated by whitespace. Rows without an id are logged and
// skipped.
func LoadTabular(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sheet: %w", err)
	}
	defer f.Close()

	var rows [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(f)
	case ".xlsx":
		rows, err = readXLSX(f)
	case ".xls":
		rows, err = readXLS(f)
	default:
		return nil, fmt.Errorf("unsupported sheet format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", path, err)
	}
	items, skipped := rowsToItems(rows)
	slog.Info("catalog loaded from sheet", "path", path, "items", len(items), "skipped", skipped)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return New(name, items), nil
}

// readCSV detects the byte encoding from the first bytes and decodes
// legacy single-byte encodings such as Windows-1251/1252 to UTF-8.
func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	peek, _ := br.Peek(4096)
	var dec io.Reader = br
	if len(peek) > 0 {
		if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
			if enc := legacyEncoding(det.Charset); enc != nil {
				dec = transform.NewReader(br, enc.NewDecoder())
			}
		}
	}
	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func legacyEncoding(charset string) encoding.Encoding {
	switch strings.ToLower(charset) {
	case "", "utf-8", "us-ascii":
		return nil
	case "windows-1251":
		return charmap.Windows1251
	case "windows-1252":
		return charmap.Windows1252
	case "iso-8859-1":
		return charmap.ISO8859_1
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil
	}
	return enc
}

func readXLSX(r io.Reader) ([][]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetRows(f.GetSheetName(0))
}

// xlsCharsets are tried in order for legacy workbooks whose string table is
// not UTF-16.
var xlsCharsets = []string{"utf-8", "windows-1252", "windows-1251"}

// maxXLSCols bounds the column scan; Row.LastCol is unreliable for some
// exporters.
const maxXLSCols = 256

func readXLS(r io.Reader) ([][]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var wb *xls.WorkBook
	for _, cs := range xlsCharsets {
		wb, err = xls.OpenReader(bytes.NewReader(b), cs)
		if err == nil && wb != nil {
			break
		}
	}
	if wb == nil {
		if err == nil {
			err = errors.New("cannot open workbook")
		}
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	width := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		for j := width; j < maxXLSCols; j++ {
			if strings.TrimSpace(row.Col(j)) != "" {
				width = j + 1
			}
		}
	}
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		rec := make([]string, width)
		if row := sheet.Row(i); row != nil {
			for j := range rec {
				rec[j] = row.Col(j)
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func rowsToItems(rows [][]string) ([]*item.Item, int) {
	if len(rows) == 0 {
		return nil, 0
	}
	cols := make(map[string]int)
	for i, h := range rows[0] {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if field, ok := columnAliases[h]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}
	cell := func(rec []string, field string) string {
		i, ok := cols[field]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var items []*item.Item
	skipped := 0
	for n, rec := range rows[1:] {
		if blankRow(rec) {
			continue
		}
		id := cell(rec, "id")
		if id == "" {
			skipped++
			slog.Warn("skipping sheet row", "row", n+2,
				"error", fmt.Errorf("%w: %w: id", apperrors.ErrCatalogItemLoad, apperrors.ErrMissingRequiredField))
			continue
		}
		parsed, _ := specs.Parse(cell(rec, "specs"))
		it := item.New(item.Text(cell(rec, "title")), parsed, item.Text(cell(rec, "description")))
		it.ID = id
		it.GalleryURL = cell(rec, "gallery")
		it.PictureURL = strings.Fields(cell(rec, "pictures"))
		it.Source = fmt.Sprintf("row:%d", n+2)
		items = append(items, it)
	}
	return items, skipped
}

func blankRow(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
