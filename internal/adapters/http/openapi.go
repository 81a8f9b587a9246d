package httpadapter

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
)

//go:embed openapi.yaml
var openAPIDocument []byte

const maxJSONBodyBytes = 1 << 20

type apiContract struct {
	doc      *openapi3.T
	rendered []byte
}

var loadContract = sync.OnceValues(func() (*apiContract, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	rendered, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("render openapi document: %w", err)
	}
	return &apiContract{doc: doc, rendered: rendered}, nil
})

func mustContract() *apiContract {
	contract, err := loadContract()
	if err != nil {
		panic(fmt.Sprintf("httpadapter: embedded openapi document is invalid: %v", err))
	}
	return contract
}

// decodeBody checks the JSON body against the named component schema before
// decoding it into dst.
func (c *apiContract) decodeBody(r *http.Request, schemaName string, dst any) error {
	const op = "decode request body"

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBodyBytes+1))
	if err != nil {
		return domain.WrapError(domain.ErrValidation, op, err)
	}
	if len(raw) > maxJSONBodyBytes {
		return domain.WrapError(domain.ErrValidation, op, errors.New("body too large"))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.WrapError(domain.ErrValidation, op, errors.New("request body is required"))
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return domain.WrapError(domain.ErrValidation, op, errors.New("invalid json"))
	}

	ref, ok := c.doc.Components.Schemas[schemaName]
	if !ok || ref.Value == nil {
		return fmt.Errorf("%s: unknown schema %q", op, schemaName)
	}
	if err := ref.Value.VisitJSON(generic); err != nil {
		return domain.WrapError(domain.ErrValidation, op, schemaError(err))
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return domain.WrapError(domain.ErrValidation, op, err)
	}
	return nil
}

func schemaError(err error) error {
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		return errors.New(se.Reason)
	}
	return err
}

func (c *apiContract) serve(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(c.rendered)
}
