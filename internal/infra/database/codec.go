package database

import (
	"encoding/json"
	"fmt"

	"budget_calendar/internal/domain/bill"
)

// Bills are stored as a JSON array snapshot on each projection row.
func marshalBills(bills []bill.Bill) ([]byte, error) {
	if bills == nil {
		bills = []bill.Bill{}
	}
	raw, err := json.Marshal(bills)
	if err != nil {
		return nil, fmt.Errorf("marshal bills: %w", err)
	}
	return raw, nil
}

func unmarshalBills(raw []byte) ([]bill.Bill, error) {
	bills := []bill.Bill{}
	if len(raw) == 0 {
		return bills, nil
	}
	if err := json.Unmarshal(raw, &bills); err != nil {
		return nil, fmt.Errorf("unmarshal bills: %w", err)
	}
	return bills, nil
}
