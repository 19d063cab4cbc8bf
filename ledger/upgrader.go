package ledger

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"pocketbook/category"
)

// legacyTransaction is the unversioned record shape from the system this
// replaces: float amounts and a plain-text date column
type legacyTransaction struct {
	Uid         string
	Amount      float64
	Type        string
	Catid       string
	Description string
	Date        string
}

type storeUpgrader struct{}

func (u *storeUpgrader) Parse(dataVersion, id string, data json.RawMessage) (interface{}, error) {
	switch dataVersion {
	case "0":
		var txn legacyTransaction
		err := json.Unmarshal(data, &txn)
		return txn, err
	case "1":
		var txn Transaction
		err := json.Unmarshal(data, &txn)
		return txn, err
	default:
		return nil, errors.Errorf("Unsupported transactions version: %q", dataVersion)
	}
}

func (u *storeUpgrader) Upgrade(dataVersion, id string, data interface{}) (string, interface{}, error) {
	switch dataVersion {
	case "0":
		legacy := data.(legacyTransaction)
		date, err := time.Parse("2006-01-02", legacy.Date)
		if err != nil {
			return "", nil, errors.Wrapf(err, "Invalid date in legacy transaction %q", id)
		}
		return "1", Transaction{
			ID:          id,
			Owner:       legacy.Uid,
			Amount:      decimal.NewFromFloat(legacy.Amount),
			Kind:        category.Kind(legacy.Type),
			CategoryID:  legacy.Catid,
			Description: legacy.Description,
			Date:        date,
		}, nil
	default:
		return dataVersion, data, nil
	}
}

func (u *storeUpgrader) ParseLegacy(legacyData json.RawMessage) (string, map[string]json.RawMessage, error) {
	var data map[string]json.RawMessage
	err := json.Unmarshal(legacyData, &data)
	return "0", data, err
}
