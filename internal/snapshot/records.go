package snapshot

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tgienger/refurb/internal/models"
)

// partRecord reads a part from any export. Older exports kept price and qty
// as the raw strings typed into the part form.
type partRecord struct {
	models.Part
	Price formNumber `json:"price"`
	Qty   formNumber `json:"qty"`
}

func (r partRecord) part() (models.Part, error) {
	p := r.Part
	p.Price = float64(r.Price)
	if float64(r.Qty) != math.Trunc(float64(r.Qty)) {
		return p, fmt.Errorf("qty %v is not a whole number", float64(r.Qty))
	}
	p.Qty = int(r.Qty)
	return p, nil
}

// formNumber is a JSON number, a numeric string, "" or null. The last two
// read as zero so the create defaults apply.
type formNumber float64

func (n *formNumber) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var v float64
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("number %q: %w", s, err)
		}
		v = parsed
	} else if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("number %s is not finite", b)
	}
	*n = formNumber(v)
	return nil
}
