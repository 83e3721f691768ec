package middleware

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminKeyHeader carries the operator key for admin-gated features.
const AdminKeyHeader = "X-Admin-Key"

// AdminAuth verifies the operator key against a bcrypt hash. An empty hash
// disables admin features entirely.
type AdminAuth struct {
	keyHash []byte
	logger  *zap.Logger
	onCheck func(success bool)
}

// NewAdminAuth creates an admin key checker. onCheck, if non-nil, is called
// with the outcome of every presented key.
func NewAdminAuth(keyHash string, logger *zap.Logger, onCheck func(success bool)) *AdminAuth {
	return &AdminAuth{
		keyHash: []byte(keyHash),
		logger:  logger,
		onCheck: onCheck,
	}
}

// Enabled reports whether an admin key hash is configured.
func (a *AdminAuth) Enabled() bool {
	return len(a.keyHash) > 0
}

// Check verifies the key presented on a request. A request without the
// header is simply not an admin request and returns false without logging.
func (a *AdminAuth) Check(r *http.Request) bool {
	key := r.Header.Get(AdminKeyHeader)
	if key == "" || !a.Enabled() {
		return false
	}

	ok := bcrypt.CompareHashAndPassword(a.keyHash, []byte(key)) == nil
	if !ok {
		a.logger.Warn("invalid admin key presented",
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("path", r.URL.Path),
		)
	}
	if a.onCheck != nil {
		a.onCheck(ok)
	}
	return ok
}

// Require returns middleware that rejects requests without a valid admin key.
func (a *AdminAuth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Check(r) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
