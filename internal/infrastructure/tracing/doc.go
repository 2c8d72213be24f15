/*
Package tracing provides lightweight spans for following an order through
the workshop and a request through the stats server.

Spans are collected on a buffered channel and written to the zap logger by a
single collector goroutine. Submitting never blocks: when the buffer is full
the span is dropped with a warning.

# Usage

	tracer := tracing.New("weldshop", logger.Logger)
	defer tracer.Close()

	span, ctx := tracer.StartSpan(ctx, "order.process")
	span.SetTag("material", "3")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

	router.Use(tracing.HTTPMiddleware(tracer))

# Propagation

HTTP requests carry the trace in the X-Trace-ID and X-Span-ID headers; the
middleware echoes the new span's identifiers back in the response.
*/
package tracing
