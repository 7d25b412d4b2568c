// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrNotSupported is returned by RunRequired when the deployment cannot
// run multi-document transactions (standalone mongod).
var ErrNotSupported = errors.New("transactions not supported by this deployment")

// Run executes fn inside a transaction. On a deployment without
// transaction support it logs a warning and runs fn without one.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	err := withTransaction(ctx, db, fn)
	if err != nil && IsNotSupported(err) {
		if log != nil {
			log.Warn("transactions unavailable; running without one", zap.Error(err))
		}
		return fn(ctx)
	}
	return err
}

// RunRequired executes fn inside a transaction and never falls back.
// Callers that must be all-or-nothing use it.
func RunRequired(ctx context.Context, db *mongo.Database, fn func(ctx context.Context) error) error {
	err := withTransaction(ctx, db, fn)
	if err != nil && IsNotSupported(err) {
		return fmt.Errorf("%w: %v", ErrNotSupported, err)
	}
	return err
}

func withTransaction(ctx context.Context, db *mongo.Database, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// IsNotSupported reports whether err means the server cannot run
// transactions. Known command codes match directly; otherwise the message
// must name a transaction or session together with a second keyword.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	hasTxn := strings.Contains(msg, "transaction")
	hasSession := strings.Contains(msg, "session")
	hasOther := false
	for _, kw := range []string{"replica set", "not supported", "illegal operation"} {
		if strings.Contains(msg, kw) {
			hasOther = true
			break
		}
	}
	return (hasTxn && (hasSession || hasOther)) || (hasSession && hasOther)
}
