package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"quoteflow/pkg/quote"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// QuoteRequest is the body accepted by create and update. Record-shaped
// payloads are accepted too; fields other than username and quote are ignored.
type QuoteRequest struct {
	Username *string `json:"username" validate:"required" example:"alice"`
	Quote    *string `json:"quote" validate:"required" example:"hello"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// decodeQuoteRequest reads and validates the JSON body. Missing fields,
// wrong types and trailing data are all rejected.
func decodeQuoteRequest(w http.ResponseWriter, r *http.Request) (QuoteRequest, error) {
	var req QuoteRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return QuoteRequest{}, fmt.Errorf("%w: decoding body: %w", errBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return QuoteRequest{}, fmt.Errorf("%w: trailing data after body", errBadRequest)
	}
	if err := validatorInstance().Struct(req); err != nil {
		return QuoteRequest{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return req, nil
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id: %w", errBadRequest, err)
	}
	return id, nil
}

// parsePagination reads page and per_page. Absent or empty values keep their
// defaults; non-integers are rejected. Range clamping is left to Normalize,
// including for integers too large for int, which Atoi saturates.
func parsePagination(q url.Values) (quote.Pagination, error) {
	p := quote.DefaultPagination()
	for key, dst := range map[string]*int{"page": &p.Page, "per_page": &p.PerPage} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return quote.Pagination{}, fmt.Errorf("%w: %s: %w", errBadRequest, key, err)
		}
		*dst = n
	}
	return p.Normalize(), nil
}
