package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"

	"github.com/Aman-ydav/CareSync-sub000/util"
)

// rejectUnknown fails when data carries a top-level key outside allowed.
func rejectUnknown(data []byte, allowed []string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var unknown []string
	for key := range raw {
		if !slices.Contains(allowed, key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return util.Validation(fmt.Sprintf("field %q cannot be updated", unknown[0]))
}
