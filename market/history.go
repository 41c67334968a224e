package market

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// History holds the daily bars for one code, indexed by trade date
// (YYYYMMDD). Dates are kept sorted ascending so lookups for "last bar
// before date" are a binary search.
type History struct {
	Code  string
	Dates []string

	bars     map[string]Bar
	badLines int
}

func NewHistory(code string, bars []Bar) *History {
	h := &History{
		Code: code,
		bars: make(map[string]Bar, len(bars)),
	}
	for _, b := range bars {
		if _, dup := h.bars[b.Date]; dup {
			continue
		}
		h.bars[b.Date] = b
		h.Dates = append(h.Dates, b.Date)
	}
	sort.Strings(h.Dates)
	return h
}

// Bar returns the bar traded on date, if any.
func (h *History) Bar(date string) (Bar, bool) {
	b, ok := h.bars[date]
	return b, ok
}

// LastBefore returns the most recent bar strictly before date.
func (h *History) LastBefore(date string) (Bar, bool) {
	i := sort.SearchStrings(h.Dates, date)
	if i == 0 {
		return Bar{}, false
	}
	return h.bars[h.Dates[i-1]], true
}

// LoadHistory reads a daily-bar CSV with the header
//
//	trade_date,open,high,low,close,pre_close,change,pct_chg,vol,amount,adj_factor
//
// Rows outside [start, end] (inclusive, YYYYMMDD) are skipped, as are
// malformed lines. The file does not need to be sorted.
func LoadHistory(code, path, start, end string) (*History, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", code, err)
	}
	defer f.Close()

	var bars []Bar
	bad := 0

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "trade_date") {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 11 {
			bad++
			continue
		}

		date := strings.TrimSpace(parts[0])
		if (start != "" && date < start) || (end != "" && date > end) {
			continue
		}

		vals := make([]float64, 10)
		ok := true
		for i := 0; i < 10; i++ {
			v, e := strconv.ParseFloat(strings.TrimSpace(parts[i+1]), 64)
			if e != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			bad++
			continue
		}

		bars = append(bars, Bar{
			Date:      date,
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			PreClose:  vals[4],
			Change:    vals[5],
			PctChg:    vals[6],
			Vol:       vals[7],
			Amount:    vals[8],
			AdjFactor: vals[9],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("load history %s: %w", code, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("load history %s: no bars in %s", code, path)
	}

	h := NewHistory(code, bars)
	h.badLines = bad
	return h, nil
}
