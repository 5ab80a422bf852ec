package apptest

import (
	"net/http"

	"github.com/expr-lang/expr"
	"github.com/pkg/errors"
)

type params map[string]string

func (p params) export() map[string]interface{} {
	interfaceMap := make(map[string]interface{})

	for key, value := range p {
		interfaceMap[key] = value
	}

	return interfaceMap
}

// Satisfies evaluates rule against the response. The rule sees:
//
//	status, reason, protocol  status line
//	headers                   header name => last value
//	cookies                   Set-Cookie name => value
//	raw                       RawBody
//	body                      ParsedBody
//
// ex: status == 201 && body.title == "日本語"
func (r *ExtraResponse) Satisfies(rule string) (bool, error) {
	raw, err := r.RawBody()
	if err != nil {
		return false, err
	}
	body, err := r.ParsedBody()
	if err != nil {
		return false, err
	}

	evalRes, err := expr.Eval(rule, map[string]interface{}{
		"status":   r.StatusCode(),
		"reason":   r.ReasonPhrase(),
		"protocol": r.ProtocolVersion(),
		"headers":  r.headerParams().export(),
		"cookies":  r.cookieParams().export(),
		"raw":      raw,
		"body":     body,
	})
	if err != nil {
		return false, errors.Wrapf(err, "evaluate rule %q", rule)
	}

	ok, isBool := evalRes.(bool)
	if !isBool {
		return false, errors.Wrapf(ErrRuleNotBoolean, "rule %q returned %T", rule, evalRes)
	}
	return ok, nil
}

func (r *ExtraResponse) headerParams() params {
	headers := make(params)
	for name, values := range r.Headers() {
		if len(values) == 0 {
			continue
		}
		headers[name] = values[len(values)-1] // always take the last header value
	}
	return headers
}

func (r *ExtraResponse) cookieParams() params {
	cookies := make(params)
	resp := http.Response{Header: r.Headers()}
	for _, cookie := range resp.Cookies() {
		cookies[cookie.Name] = cookie.Value
	}
	return cookies
}
