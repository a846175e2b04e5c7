package tracing

import (
	"net/url"

	"hackathon-platform/config"

	"github.com/getsentry/sentry-go"
	"github.com/go-resty/resty/v2"
)

// TopicHeader 事件通知请求携带的主题头，同时作为 span 标签
const TopicHeader = "X-Event-Topic"

// SetupRestyTracing 为出站通知请求创建 http.client span，并透传 sentry-trace 与 baggage
func SetupRestyTracing(client *resty.Client) {
	if !config.Get().Sentry.Tracing.TraceHTTPCalls {
		return
	}

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		parent := sentry.SpanFromContext(req.Context())
		if parent == nil {
			return nil
		}
		target := sanitizeURL(req.URL)
		span := parent.StartChild("http.client")
		span.Description = req.Method + " " + target
		span.SetData("http.request.method", req.Method)
		span.SetData("url.full", target)
		if topic := req.Header.Get(TopicHeader); topic != "" {
			span.SetTag("event.topic", topic)
		}

		req.SetHeader("sentry-trace", span.ToSentryTrace())
		if baggage := span.ToBaggage(); baggage != "" {
			req.SetHeader("baggage", baggage)
		}
		req.SetContext(span.Context())
		return nil
	})

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		span := sentry.SpanFromContext(resp.Request.Context())
		if span == nil {
			return nil
		}
		span.SetData("http.response.status_code", resp.StatusCode())
		span.Status = sentry.SpanStatusOK
		if resp.StatusCode() >= 400 {
			span.Status = sentry.HTTPtoSpanStatus(resp.StatusCode())
		}
		span.Finish()
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		if req == nil {
			return
		}
		if span := sentry.SpanFromContext(req.Context()); span != nil {
			span.Status = sentry.SpanStatusInternalError
			span.SetData("http.error", err.Error())
			span.Finish()
		}
	})
}

// sanitizeURL 只保留 scheme://host/path，webhook 地址的查询参数里常带签名
func sanitizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Host == "" && parsed.Path == "") {
		return "unknown"
	}
	stripped := url.URL{Scheme: parsed.Scheme, Host: parsed.Host, Path: parsed.Path}
	return stripped.String()
}
