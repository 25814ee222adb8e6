package observability

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Spok95/college-portal/internal/apperr"
)

func InitSentry(dsn, env, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     release,
	}); err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

func CaptureErr(err error) {
	if err != nil {
		sentry.CaptureException(err)
	}
}

// CaptureRemote: в Sentry уходят только сбои хранилища; валидация, конфликты и 404 туда не попадают.
func CaptureRemote(err error) {
	if err == nil {
		return
	}
	if k, ok := apperr.KindOf(err); ok && k != apperr.KindRemote {
		return
	}
	sentry.CaptureException(err)
}
