// Package importer converts external files (spreadsheets, JSON bundles)
// into validated journal records. Parsing is pure: nothing here touches
// the record store, so a rejected import leaves no trace.
package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gaocuixia/running-journal/internal/apperr"
	"github.com/gaocuixia/running-journal/internal/models"
)

// role identifies the semantic meaning of a spreadsheet column.
type role int

const (
	roleName role = iota
	roleDate
	roleCategory
	roleFinishTime
	roleNotes
	roleLocation
	roleCount
)

// unresolved marks a role with no matching column. Column index 0 is a
// perfectly valid resolution; only this sentinel means "missing".
const unresolved = -1

// headerRules maps header keywords to roles. Order matters twice over:
// a column is assigned the first rule it matches, and a role keeps the
// first column that matched it. Later conflicting matches are dropped.
var headerRules = []struct {
	role     role
	keywords []string
}{
	{roleName, []string{"赛事名称", "名称"}},
	{roleDate, []string{"日期"}},
	{roleCategory, []string{"类型", "分类"}},
	{roleFinishTime, []string{"成绩", "完成时间", "时间"}},
	{roleNotes, []string{"备注", "说明"}},
	{roleLocation, []string{"地点", "位置"}},
}

// distanceRules infers race distance (km) from category text. A closed
// table evaluated top to bottom, first match wins.
var distanceRules = []struct {
	keyword  string
	distance float64
}{
	{"全马", 42.195},
	{"半马", 21.0975},
	{"10公里", 10},
	{"10k", 10},
	{"5公里", 5},
	{"5k", 5},
}

// defaultCategory is assigned when a row has no category cell.
const defaultCategory = "其他"

// serialEpochOffset is the number of days between the spreadsheet serial
// date epoch (1899-12-30) and the Unix epoch (1970-01-01).
const serialEpochOffset = 25569

// dateLayouts are tried in order when a raw date is neither dot-separated
// nor a serial number.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"2006年01月02日",
	"2006年1月2日",
	"January 2, 2006",
	"Jan 2, 2006",
	time.RFC3339,
}

// NormalizeSheet maps a tabular sheet (header row first) to validated
// Events. now supplies the fallback date and the id minting base; taken
// holds ids already in use so freshly minted ids never collide.
//
// The whole batch either parses or is rejected with one of the apperr
// import sentinels; there is no partial output on error.
func NormalizeSheet(rows [][]string, now time.Time, taken map[int64]struct{}) ([]models.Event, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("importer: %w: need a header row and at least one data row", apperr.ErrInsufficientData)
	}

	cols := resolveHeader(rows[0])
	if cols[roleName] == unresolved || cols[roleDate] == unresolved || cols[roleFinishTime] == unresolved {
		return nil, fmt.Errorf("importer: %w: name, date and finish time columns are required", apperr.ErrMissingColumns)
	}

	minted := make(map[int64]struct{}, len(taken))
	for id := range taken {
		minted[id] = struct{}{}
	}

	var out []models.Event
	for _, row := range rows[1:] {
		name := cell(row, cols[roleName])
		if name == "" {
			continue // rows without a name are silently dropped
		}

		category := cell(row, cols[roleCategory])
		if category == "" {
			category = defaultCategory
		}

		location := cell(row, cols[roleLocation])
		if location == "" {
			location = name
		}

		ev := models.Event{
			ID:         mintID(now, minted),
			Name:       name,
			Date:       normalizeDate(cell(row, cols[roleDate]), now),
			Distance:   inferDistance(category),
			Location:   location,
			FinishTime: cell(row, cols[roleFinishTime]),
			Category:   category,
			Notes:      cell(row, cols[roleNotes]),
		}
		out = append(out, ev)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("importer: %w", apperr.ErrNoValidRows)
	}
	return out, nil
}

// resolveHeader assigns a role to each header column. Matching is
// case-insensitive substring containment; each column takes the first
// rule it matches, and each role keeps its first column.
func resolveHeader(header []string) [roleCount]int {
	var cols [roleCount]int
	for i := range cols {
		cols[i] = unresolved
	}
	for idx, raw := range header {
		h := strings.ToLower(strings.TrimSpace(raw))
		if h == "" {
			continue
		}
		for _, rule := range headerRules {
			if !matchesAny(h, rule.keywords) {
				continue
			}
			if cols[rule.role] == unresolved {
				cols[rule.role] = idx
			}
			break // column consumed by its first matching rule
		}
	}
	return cols
}

func matchesAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// inferDistance maps category text to a distance via the closed rule
// table. Unknown categories yield 0, never an error.
func inferDistance(category string) float64 {
	c := strings.ToLower(category)
	for _, rule := range distanceRules {
		if strings.Contains(c, rule.keyword) {
			return rule.distance
		}
	}
	return 0
}

// normalizeDate converts the heterogeneous date encodings found in race
// spreadsheets to YYYY-MM-DD. Tried in order: dot-separated calendar
// dates, spreadsheet serial numbers, then a list of known layouts.
// Anything unparseable (including an empty cell) becomes now's date.
func normalizeDate(raw string, now time.Time) string {
	if raw != "" {
		if strings.Contains(raw, ".") {
			if parts := strings.Split(raw, "."); len(parts) == 3 {
				return parts[0] + "-" + pad2(parts[1]) + "-" + pad2(parts[2])
			}
			// Fewer or more segments fall through to general parsing.
		} else if serial, err := strconv.ParseFloat(raw, 64); err == nil {
			sec := (serial - serialEpochOffset) * 86400
			return time.Unix(int64(sec), 0).UTC().Format("2006-01-02")
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return now.Format("2006-01-02")
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// mintID returns a millisecond-timestamp id guaranteed unique against
// ids, and records it there. Same-millisecond batches increment past
// each other.
func mintID(now time.Time, ids map[int64]struct{}) int64 {
	id := now.UnixMilli()
	for {
		if _, exists := ids[id]; !exists {
			ids[id] = struct{}{}
			return id
		}
		id++
	}
}

// cell returns the trimmed cell at idx, or "" when the row is shorter
// than the header (spreadsheet libraries drop trailing empties).
func cell(row []string, idx int) string {
	if idx == unresolved || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
