package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	apperrors "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/errors"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestDecodeJSONItem(t *testing.T) {
	it, err := DecodeJSONItem([]byte(`{
		"ItemID": "123",
		"Title": "Apple iPhone 6s",
		"ItemSpecifics": {"NameValueList": [
			{"Name": "Brand", "Value": "Apple"},
			{"Name": "Features", "Value": ["Bluetooth", "GPS"]}
		]},
		"Description": "Unlocked",
		"GalleryURL": "http://img/g.jpg",
		"PictureURL": "http://img/p.jpg"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "123", it.ID)
	assert.Equal(t, "Apple iPhone 6s", it.TitleString())
	assert.Equal(t, map[string]string{"brand": "Apple", "features": "Bluetooth, GPS"}, it.Specs)
	assert.Equal(t, "Unlocked", it.DescriptionString())
	assert.Equal(t, []string{"http://img/p.jpg"}, it.PictureURL)
}

func TestDecodeJSONItemSingleNameValue(t *testing.T) {
	it, err := DecodeJSONItem([]byte(`{"ItemID": 42, "ItemSpecifics": {"NameValueList": {"Name": "Model", "Value": "A1688"}}, "PictureURL": ["a", "b"]}`))
	require.NoError(t, err)
	assert.Equal(t, "42", it.ID)
	assert.Nil(t, it.Title)
	assert.Equal(t, map[string]string{"model": "A1688"}, it.Specs)
	assert.Equal(t, []string{"a", "b"}, it.PictureURL)
}

func TestDecodeJSONItemErrors(t *testing.T) {
	_, err := DecodeJSONItem([]byte(`{"Title": "no id"}`))
	assert.ErrorIs(t, err, apperrors.ErrCatalogItemLoad)
	assert.ErrorIs(t, err, apperrors.ErrMissingRequiredField)

	_, err = DecodeJSONItem([]byte(`{not json`))
	assert.ErrorIs(t, err, apperrors.ErrCatalogItemLoad)
}

func TestLoadJSONDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "phones")
	writeFile(t, filepath.Join(dir, "item-1.json"), `{"ItemID": "1", "Title": "First"}`)
	writeFile(t, filepath.Join(dir, "nested", "item-2.json"), `{"ItemID": "2", "Title": "Second"}`)
	writeFile(t, filepath.Join(dir, "item-3.json"), `{broken`)
	writeFile(t, filepath.Join(dir, "notes.json"), `{"ItemID": "x"}`)

	cat, err := LoadJSONDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "phones", cat.Name())
	require.Equal(t, 2, cat.Len())
	assert.Equal(t, "1", cat.Items()[0].ID)
	assert.Equal(t, "2", cat.Items()[1].ID)
	assert.Equal(t, filepath.Join(dir, "item-1.json"), cat.Items()[0].Source)

	_, err = LoadJSONDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestLoadCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), CategoriesFile)
	writeFile(t, path, `[{"id": "phones", "label": "Cell Phones"}, {"id": "games", "label": "Video Games"}]`)
	cats, err := LoadCategories(path)
	require.NoError(t, err)
	assert.Equal(t, []Category{{"phones", "Cell Phones"}, {"games", "Video Games"}}, cats)

	for name, body := range map[string]string{
		"no label":  `[{"id": "phones"}]`,
		"no id":     `[{"label": "x"}]`,
		"duplicate": `[{"id": "a", "label": "x"}, {"id": "a", "label": "y"}]`,
		"object":    `{"id": "a"}`,
	} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), CategoriesFile)
			writeFile(t, p, body)
			_, err := LoadCategories(p)
			assert.Error(t, err)
		})
	}
}

func TestLoadTabularCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phones.csv")
	writeFile(t, path, "ItemID,Title,ItemSpecifics,PictureURL\n"+
		"1,Apple iPhone 6s,'Brand': 'Apple'; 'Model': 'iPhone 6s';,http://a http://b\n"+
		",No id,,\n"+
		",,,\n"+
		"2,Galaxy S7,,\n")
	cat, err := LoadTabular(path)
	require.NoError(t, err)
	assert.Equal(t, "phones", cat.Name())
	require.Equal(t, 2, cat.Len())
	first := cat.Items()[0]
	assert.Equal(t, map[string]string{"brand": "Apple", "model": "iPhone 6s"}, first.Specs)
	assert.Equal(t, []string{"http://a", "http://b"}, first.PictureURL)
	assert.Nil(t, cat.Items()[1].Description)
}

func TestLoadTabularLegacyEncoding(t *testing.T) {
	body, err := charmap.Windows1252.NewEncoder().String(
		"ItemID,Title,Description\n" +
			"7,Café crème espresso machine,Crème brûlée edition with café au lait frother and crème décor\n")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "kitchen.csv")
	writeFile(t, path, body)

	cat, err := LoadTabular(path)
	require.NoError(t, err)
	require.Equal(t, 1, cat.Len())
	title := cat.Items()[0].TitleString()
	assert.True(t, utf8.ValidString(title))
	assert.Contains(t, title, "espresso")
}

func TestLoadTabularXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"ItemID", "Title", "Description"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"9", "Nintendo Switch", "Neon"}))
	path := filepath.Join(t.TempDir(), "games.xlsx")
	require.NoError(t, f.SaveAs(path))

	cat, err := LoadTabular(path)
	require.NoError(t, err)
	require.Equal(t, 1, cat.Len())
	assert.Equal(t, "9", cat.Items()[0].ID)
	assert.Equal(t, "Neon", cat.Items()[0].DescriptionString())
}

func TestLoadTabularUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.txt")
	writeFile(t, path, "")
	_, err := LoadTabular(path)
	assert.Error(t, err)
}
