package flash

import (
	"context"
	"errors"

	"paws-and-claws/internal/ports/session"
)

const (
	keySuccess = "flash.success"
	keyError   = "flash.error"
)

// Flash carries one-shot success/error messages across redirects, piggybacking
// on the transient session store. Pop clears what it returns.
type Flash struct {
	store session.Store
}

func New(store session.Store) *Flash {
	return &Flash{store: store}
}

func (f *Flash) Success(ctx context.Context, sid, msg string) {
	_ = f.store.Set(ctx, sid, keySuccess, []byte(msg))
}

func (f *Flash) Error(ctx context.Context, sid, msg string) {
	_ = f.store.Set(ctx, sid, keyError, []byte(msg))
}

func (f *Flash) Pop(ctx context.Context, sid string) (success, errMsg string) {
	if v, err := f.store.Get(ctx, sid, keySuccess); err == nil {
		success = string(v)
		_ = f.store.Delete(ctx, sid, keySuccess)
	} else if !errors.Is(err, session.ErrNotFound) {
		return "", ""
	}
	if v, err := f.store.Get(ctx, sid, keyError); err == nil {
		errMsg = string(v)
		_ = f.store.Delete(ctx, sid, keyError)
	}
	return success, errMsg
}
