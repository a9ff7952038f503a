package restyutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type Output interface {
	Write(id string, contents string)
}

// DumpExchanges writes every completed request/response pair to output,
// named after the request's X-Request-Id header when one is set.
// A nil output leaves the client untouched.
func DumpExchanges(client *resty.Client, output Output) {
	if output == nil {
		return
	}
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := res.Request.Header.Get("X-Request-Id")
		if id == "" {
			id = fmt.Sprint(time.Now().UnixNano())
		}
		name := fmt.Sprintf(
			"%s-%s.txt",
			strings.ToLower(res.Request.Method),
			id,
		)
		output.Write(name, FormatExchange(res))
		return nil
	})
}
