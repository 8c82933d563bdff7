package telemetry

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of application service spans
const TracerName = "affiliate-service"

// Span attribute keys
const (
	AttrAffiliateID = attribute.Key("affiliate.id")
	AttrReferralID  = attribute.Key("referral.id")
	AttrUserID      = attribute.Key("user.id")
	AttrAction      = attribute.Key("action")
)

// ID renders a uuid attribute
func ID(key attribute.Key, id uuid.UUID) attribute.KeyValue {
	return key.String(id.String())
}

// StartServiceSpan starts an internal span named service.method. The
// caller ends it.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "referral", "transition",
//		telemetry.ID(telemetry.AttrReferralID, id))
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...))
}

// RecordError marks span failed with err. A nil err leaves it untouched.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
