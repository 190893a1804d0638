package features

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

var reservedChars = strings.NewReplacer("[", "_", "]", "_", "<", "_")

// nameSet hands out column names that do not collide with names already taken.
type nameSet map[string]bool

func namesOf(t *table.Table) nameSet {
	s := nameSet{}
	for _, n := range t.Names() {
		s[n] = true
	}
	return s
}

// claim returns name, or name_<k> for the smallest free k, and marks it taken.
func (s nameSet) claim(name string) string {
	if !s[name] {
		s[name] = true
		return name
	}
	for k := 1; ; k++ {
		n := fmt.Sprintf("%s_%d", name, k)
		if !s[n] {
			s[n] = true
			return n
		}
	}
}

// SanitizeName rewrites characters reserved by model-fitting libraries.
func SanitizeName(name string) string {
	name = strings.TrimSpace(reservedChars.Replace(name))
	if name == "" {
		return "column"
	}
	return name
}

// sanitize renames every column with SanitizeName, de-duplicating in order.
func sanitize(t *table.Table) (*table.Table, error) {
	seen := nameSet{}
	cols := make([]*table.Column, t.Width())
	for i, c := range t.Columns() {
		name := seen.claim(SanitizeName(c.Name))
		if name == c.Name {
			cols[i] = c
			continue
		}
		cols[i] = c.Clone(name)
	}
	return table.New(cols...)
}
