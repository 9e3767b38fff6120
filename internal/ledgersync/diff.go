package ledgersync

import (
	"bytes"
	"encoding/json"
	"reflect"

	catalogdomain "github.com/smallbiznis/bizledger/internal/catalog/domain"
)

// Diff compares two versions of a collection by id. addedOrUpdated holds the elements of
// next that are new or structurally changed; removed holds the elements of prev whose id
// no longer appears in next. Both keep the order of their input.
func Diff[T catalogdomain.Record](prev, next []T) (addedOrUpdated, removed []T) {
	prevByID := make(map[string]T, len(prev))
	for _, item := range prev {
		prevByID[item.GetID()] = item
	}
	nextIDs := make(map[string]struct{}, len(next))
	for _, item := range next {
		nextIDs[item.GetID()] = struct{}{}
		old, ok := prevByID[item.GetID()]
		if !ok || !sameRecord(old, item) {
			addedOrUpdated = append(addedOrUpdated, item)
		}
	}
	for _, item := range prev {
		if _, ok := nextIDs[item.GetID()]; !ok {
			removed = append(removed, item)
		}
	}
	return addedOrUpdated, removed
}

// sameRecord compares the wire form so that decimals equal on the wire compare equal.
func sameRecord[T any](a, b T) bool {
	left, errA := json.Marshal(a)
	right, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return bytes.Equal(left, right)
}
