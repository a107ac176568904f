package repository

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidSaleRecord is returned when a record does not match the sale record schema.
var ErrInvalidSaleRecord = errors.New("invalid sale record")

const saleRecordSchemaURL = "sale_record.v1.json"

//go:embed schemas/sale_record.v1.json
var saleRecordSchemaJSON []byte

var saleRecordSchema = mustCompileSaleSchema()

func mustCompileSaleSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(saleRecordSchemaURL, bytes.NewReader(saleRecordSchemaJSON)); err != nil {
		panic(fmt.Sprintf("adding sale record schema: %v", err))
	}
	schema, err := compiler.Compile(saleRecordSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("compiling sale record schema: %v", err))
	}
	return schema
}

// ValidateSaleRecord checks an encoded sale record against the schema.
func ValidateSaleRecord(payload []byte) error {
	var v interface{}
	if err := json.Unmarshal(payload, &v); err != nil {
		return fmt.Errorf("%w: not valid JSON: %v", ErrInvalidSaleRecord, err)
	}
	if err := saleRecordSchema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSaleRecord, err)
	}
	return nil
}
