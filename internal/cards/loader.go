package cards

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CatalogFiles are read from the data directory in this order. Missing files
// are skipped, but at least one must exist.
var CatalogFiles = []string{
	"cardlist.csv",
	"cardlist.json",
	"custom_cards.csv",
}

// ImageDir is the subdirectory of the data directory holding card images.
const ImageDir = "images"

// ImageURLPrefix is the URL path the server exposes ImageDir under.
const ImageURLPrefix = "/images/"

var columnAliases = map[string]string{
	"id":     "id",
	"number": "id",
	"カード番号":  "id",
	"カードid":  "id",
	"name":   "name",
	"カード名":   "name",
	"category": "category",
	"カテゴリ":     "category",
	"team":     "team",
	"高校":       "team",
	"チーム":      "team",
	"set":      "set",
	"収録弾":      "set",
	"image":    "image",
	"画像":       "image",
	"画像url":    "image",
}

func parseListCell(s string) string {
	s = strings.ReplaceAll(s, "／", "/")
	parts := strings.Split(s, "/")
	out := []string{}
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" && t != "-" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "/")
}

// LoadCatalog loads every catalog file in dataDir and resolves missing image
// handles against the image directory.
func LoadCatalog(dataDir string) ([]Card, error) {
	var all []Card
	var found bool
	for _, name := range CatalogFiles {
		f := filepath.Join(dataDir, name)
		if _, err := os.Stat(f); err != nil {
			continue
		}
		found = true
		var (
			cs  []Card
			err error
		)
		if strings.HasSuffix(name, ".json") {
			cs, err = loadJSON(f)
		} else {
			cs, err = loadCSV(f)
		}
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
		all = append(all, cs...)
	}
	if !found {
		return nil, fmt.Errorf("no catalog files found in %s", dataDir)
	}
	images, err := indexImages(filepath.Join(dataDir, ImageDir))
	if err != nil {
		return nil, err
	}
	return MergeImages(all, images), nil
}

func loadCSV(path string) ([]Card, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	r := csv.NewReader(fp)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("csv %s has no header", path)
	}

	cols := map[string]int{}
	statCols := map[string]int{}
	for i, h := range rows[0] {
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		if field, ok := columnAliases[strings.ToLower(h)]; ok {
			cols[field] = i
			continue
		}
		if stat := CanonicalStat(h); isStatName(stat) {
			statCols[stat] = i
		}
	}
	if _, ok := cols["id"]; !ok {
		return nil, fmt.Errorf("csv %s has no identifier column", path)
	}

	get := func(row []string, idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}
	field := func(row []string, name string) string {
		if idx, ok := cols[name]; ok {
			return get(row, idx)
		}
		return ""
	}

	out := []Card{}
	for _, row := range rows[1:] {
		c := Card{
			ID:       field(row, "id"),
			Name:     field(row, "name"),
			Category: ParseCategory(field(row, "category")),
			Team:     parseListCell(field(row, "team")),
			Set:      field(row, "set"),
			Image:    field(row, "image"),
		}
		if len(statCols) > 0 {
			c.Stats = make(map[string]StatValue, len(statCols))
			for stat, idx := range statCols {
				c.Stats[stat] = ParseStat(get(row, idx))
			}
		}
		out = append(out, c)
	}
	return out, nil
}

type jsonCard struct {
	ID       string               `json:"id"`
	Number   string               `json:"number"`
	Name     string               `json:"name"`
	Category string               `json:"category"`
	Team     string               `json:"team"`
	Set      string               `json:"set"`
	Stats    map[string]StatValue `json:"stats"`
	Image    string               `json:"image"`
}

func loadJSON(path string) ([]Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []jsonCard
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make([]Card, 0, len(raw))
	for _, r := range raw {
		id := r.ID
		if id == "" {
			id = r.Number
		}
		c := Card{
			ID:       strings.TrimSpace(id),
			Name:     r.Name,
			Category: ParseCategory(r.Category),
			Team:     parseListCell(r.Team),
			Set:      r.Set,
			Stats:    CanonicalStats(r.Stats),
			Image:    r.Image,
		}
		out = append(out, c)
	}
	return out, nil
}

func isStatName(s string) bool {
	for _, n := range StatNames {
		if n == s {
			return true
		}
	}
	return false
}

// indexImages maps lower-cased file stems to file names. A missing directory
// yields an empty index.
func indexImages(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading image dir %s: %w", dir, err)
	}
	idx := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".png", ".jpg", ".jpeg", ".webp":
		default:
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		idx[strings.ToLower(strings.TrimSpace(stem))] = name
	}
	return idx, nil
}

// MergeImages fills empty image handles from the index, matching identifiers
// case-insensitively.
func MergeImages(cs []Card, images map[string]string) []Card {
	for i := range cs {
		if cs[i].Image != "" {
			continue
		}
		if name, ok := images[strings.ToLower(strings.TrimSpace(cs[i].ID))]; ok {
			cs[i].Image = ImageURLPrefix + name
		}
	}
	return cs
}
