package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shopcart-console/internal/components/telemetry"
	"shopcart-console/internal/form"
	"shopcart-console/lib/htmlutil"
	"shopcart-console/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("shopcart-console/internal/dispatch")

const (
	report_application_error = "application-error"
	report_mapping_error     = "mapping-error"
	report_transport_error   = "transport-error"
)

const requestIdHeader = "X-Request-Id"

type Options struct {
	BaseUrl string
	// Timeout of a single request. Zero leaves the HTTP client default.
	Timeout   time.Duration
	Telemetry telemetry.API
	// DumpOutput receives every request/response pair when set.
	DumpOutput restyutil.Output
}

// Dispatcher issues exactly one HTTP request per operation and turns its
// outcome into records or an *Error.
type Dispatcher struct {
	http *resty.Client
	tel  telemetry.API
}

func New(opts Options) (*Dispatcher, error) {
	if opts.BaseUrl == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.Parse(opts.BaseUrl); err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(opts.BaseUrl, "/"))
	client.SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if req.Header.Get(requestIdHeader) == "" {
			req.SetHeader(requestIdHeader, uuid.NewString())
		}
		return nil
	})

	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	telemetry.InstrumentResty(client, "shopcart-console/http", telemetry.NewScopedAPI("http", tel))
	restyutil.DumpExchanges(client, opts.DumpOutput)

	return &Dispatcher{
		http: client,
		tel:  telemetry.NewScopedAPI("dispatcher", tel),
	}, nil
}

// Create posts the record's writable attributes to the collection and
// returns the server's representation of the new resource.
func (d *Dispatcher) Create(ctx context.Context, s form.Schema, rec form.Record) (form.Record, error) {
	ctx, span := tracer.Start(ctx, "dispatcher:Create")
	defer span.End()

	const op = "create"
	path, err := collectionPath(op, s, rec)
	if err != nil {
		return nil, d.fail(span, err)
	}
	body, err := payload(op, s, rec)
	if err != nil {
		return nil, d.fail(span, err)
	}
	res, err := d.do(ctx, op, http.MethodPost, path, body)
	if err != nil {
		return nil, d.fail(span, err)
	}
	out, err := decode(op, s, res)
	if err != nil {
		return nil, d.fail(span, err)
	}
	span.SetAttributes(attribute.String("resource/id", out.Get(s.Identifier().Name)))
	return out, nil
}

// Update puts the record's writable attributes to the member named by its
// identifier.
func (d *Dispatcher) Update(ctx context.Context, s form.Schema, rec form.Record) (form.Record, error) {
	ctx, span := tracer.Start(ctx, "dispatcher:Update")
	defer span.End()

	const op = "update"
	path, err := memberPath(op, s, rec)
	if err != nil {
		return nil, d.fail(span, err)
	}
	body, err := payload(op, s, rec)
	if err != nil {
		return nil, d.fail(span, err)
	}
	res, err := d.do(ctx, op, http.MethodPut, path, body)
	if err != nil {
		return nil, d.fail(span, err)
	}
	out, err := decode(op, s, res)
	if err != nil {
		return nil, d.fail(span, err)
	}
	return out, nil
}

func (d *Dispatcher) Retrieve(ctx context.Context, s form.Schema, rec form.Record) (form.Record, error) {
	ctx, span := tracer.Start(ctx, "dispatcher:Retrieve")
	defer span.End()

	const op = "retrieve"
	path, err := memberPath(op, s, rec)
	if err != nil {
		return nil, d.fail(span, err)
	}
	res, err := d.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, d.fail(span, err)
	}
	out, err := decode(op, s, res)
	if err != nil {
		return nil, d.fail(span, err)
	}
	return out, nil
}

// Delete removes the member named by the record's identifier. Failure bodies
// are never parsed: every failure carries MessageServerError.
func (d *Dispatcher) Delete(ctx context.Context, s form.Schema, rec form.Record) error {
	ctx, span := tracer.Start(ctx, "dispatcher:Delete")
	defer span.End()

	const op = "delete"
	path, err := memberPath(op, s, rec)
	if err != nil {
		return d.fail(span, err)
	}
	_, err = d.do(ctx, op, http.MethodDelete, path, nil)
	if err != nil {
		var derr *Error
		if errors.As(err, &derr) && derr.Kind != KindValidation {
			derr.Message = MessageServerError
		}
		return d.fail(span, err)
	}
	return nil
}

// List fetches the collection filtered by the record's non-empty filter
// fields, in schema order.
func (d *Dispatcher) List(ctx context.Context, s form.Schema, rec form.Record) ([]form.Record, error) {
	ctx, span := tracer.Start(ctx, "dispatcher:List")
	defer span.End()

	const op = "search"
	path, err := collectionPath(op, s, rec)
	if err != nil {
		return nil, d.fail(span, err)
	}
	path = FilterQuery(s, rec).Apply(path)

	res, err := d.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, d.fail(span, err)
	}
	out, err := s.DecodeList(res.Body())
	if err != nil {
		return nil, d.fail(span, &Error{
			Kind:    KindMapping,
			Op:      op,
			Status:  res.StatusCode(),
			Message: MessageUnexpected,
			Err:     err,
		})
	}
	span.SetAttributes(attribute.Int("resource/count", len(out)))
	return out, nil
}

// Empty removes every item from an emptiable resource with
// PUT /{resource}/{id}/clear.
func (d *Dispatcher) Empty(ctx context.Context, s form.Schema, rec form.Record) error {
	ctx, span := tracer.Start(ctx, "dispatcher:Empty")
	defer span.End()

	const op = "empty"
	if !s.Emptiable {
		return d.fail(span, &Error{
			Kind:    KindValidation,
			Op:      op,
			Message: fmt.Sprintf("%s cannot be emptied.", s.Singular),
		})
	}
	path, err := memberPath(op, s, rec)
	if err != nil {
		return d.fail(span, err)
	}
	_, err = d.do(ctx, op, http.MethodPut, path+"/clear", nil)
	if err != nil {
		return d.fail(span, err)
	}
	return nil
}

// FilterQuery builds the list query from the schema's filter fields. Fields
// that are empty (or only whitespace) are left out entirely.
func FilterQuery(s form.Schema, rec form.Record) Query {
	var q Query
	for _, f := range s.Filters() {
		q.Add(f.Name, strings.TrimSpace(rec.Get(f.Name)))
	}
	return q
}

func (d *Dispatcher) do(ctx context.Context, op, method, path string, body any) (*resty.Response, error) {
	req := d.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	res, err := req.Execute(method, path)
	if err != nil {
		return nil, &Error{
			Kind:    KindTransport,
			Op:      op,
			Message: MessageTransport,
			Err:     err,
		}
	}
	if !res.IsSuccess() {
		return res, &Error{
			Kind:    KindApplication,
			Op:      op,
			Status:  res.StatusCode(),
			Message: failureMessage(res.Header().Get("Content-Type"), res.Body()),
		}
	}
	return res, nil
}

// fail records err on the span and reports it, then hands it back.
func (d *Dispatcher) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var derr *Error
	if !errors.As(err, &derr) {
		d.tel.ReportBroken(report_transport_error, err)
		return err
	}
	switch derr.Kind {
	case KindTransport:
		d.tel.ReportWarning(report_transport_error, derr.Op, derr.Err)
	case KindApplication:
		d.tel.ReportWarning(report_application_error, derr.Op, derr.Status, derr.Message)
	case KindMapping:
		d.tel.ReportBroken(report_mapping_error, derr.Op, derr.Err)
	case KindValidation:
		d.tel.ReportDebug("validation failed", "op", derr.Op, "message", derr.Message)
	}
	return err
}

func payload(op string, s form.Schema, rec form.Record) (map[string]any, error) {
	body, err := s.Payload(rec)
	if err != nil {
		return nil, &Error{
			Kind:    KindValidation,
			Op:      op,
			Message: err.Error(),
			Err:     err,
		}
	}
	return body, nil
}

func decode(op string, s form.Schema, res *resty.Response) (form.Record, error) {
	out, err := s.Decode(res.Body())
	if err != nil {
		return nil, &Error{
			Kind:    KindMapping,
			Op:      op,
			Status:  res.StatusCode(),
			Message: MessageUnexpected,
			Err:     err,
		}
	}
	return out, nil
}

func required(op string, f form.Field) error {
	err := &form.RequiredError{Field: f}
	return &Error{
		Kind:    KindValidation,
		Op:      op,
		Message: err.Error(),
		Err:     err,
	}
}

// collectionPath is /{resource}, or /{parent}/{parent id}/{resource} for
// nested schemas.
func collectionPath(op string, s form.Schema, rec form.Record) (string, error) {
	parent, ok := s.ParentField()
	if !ok {
		return "/" + s.Name, nil
	}
	pid := strings.TrimSpace(rec.Get(parent.Name))
	if pid == "" {
		return "", required(op, parent)
	}
	return fmt.Sprintf("/%s/%s/%s", s.Parent, url.PathEscape(pid), s.Name), nil
}

func memberPath(op string, s form.Schema, rec form.Record) (string, error) {
	id := s.Identifier()
	value := strings.TrimSpace(rec.Get(id.Name))
	if value == "" {
		return "", required(op, id)
	}
	collection, err := collectionPath(op, s, rec)
	if err != nil {
		return "", err
	}
	return collection + "/" + url.PathEscape(value), nil
}

type failureBody struct {
	Message string `json:"message"`
}

// failureMessage extracts the human readable message of a failure response:
// a JSON {message}, else the text of an HTML error page, else the fixed
// fallback.
func failureMessage(contentType string, body []byte) string {
	if htmlutil.LooksLikeHTML(contentType, body) {
		if message := htmlutil.ErrorPageMessage(body); message != "" {
			return message
		}
		return MessageServerError
	}
	var parsed failureBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if message := strings.TrimSpace(parsed.Message); message != "" {
			return message
		}
	}
	return MessageServerError
}
