package model

import (
	"fmt"

	"poolscope/internal/storage"
)

// TokenMetadata is one resolved token row. Address is the lower-cased
// 0x-prefixed contract address and acts as the unique key.
type TokenMetadata struct {
	Address  string
	Symbol   *string
	Decimals *int
	Price    *float64
}

// TokenMetadataColumns is the persisted column order of the metadata cache.
var TokenMetadataColumns = []string{
	"address",
	"symbol",
	"decimals",
	"price",
}

// Record renders the token as one CSV row in TokenMetadataColumns order.
func (t TokenMetadata) Record() []string {
	return []string{
		t.Address,
		stringPtrCell(t.Symbol),
		intPtrCell(t.Decimals),
		floatPtrCell(t.Price),
	}
}

// TokenMetadataTable converts token rows into a storage table.
func TokenMetadataTable(tokens []TokenMetadata) storage.Table {
	t := storage.Table{Columns: TokenMetadataColumns}
	for _, token := range tokens {
		t.Rows = append(t.Rows, token.Record())
	}
	return t
}

// TokenMetadataFromTable decodes a previously persisted metadata table.
func TokenMetadataFromTable(t storage.Table) ([]TokenMetadata, error) {
	idx, err := t.ColumnIndex(TokenMetadataColumns)
	if err != nil {
		return nil, fmt.Errorf("token metadata table: %w", err)
	}

	tokens := make([]TokenMetadata, 0, len(t.Rows))
	for i, row := range t.Rows {
		decimals, err := parseIntPtrCell(row[idx["decimals"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse decimals: %w", i, err)
		}
		price, err := parseFloatPtrCell(row[idx["price"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse price: %w", i, err)
		}

		tokens = append(tokens, TokenMetadata{
			Address:  row[idx["address"]],
			Symbol:   parseStringPtrCell(row[idx["symbol"]]),
			Decimals: decimals,
			Price:    price,
		})
	}
	return tokens, nil
}
