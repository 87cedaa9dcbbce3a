package service

import (
	"errors"

	domainerrors "github.com/presenterapp/presenter/internal/errors"
	"github.com/presenterapp/presenter/internal/store"
)

// translate maps a store error onto a domain error. what names the entity
// the operation was about and appears in not-found and duplicate messages.
// Anything unrecognized is a storage failure.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}

	var de *domainerrors.Error
	if errors.As(err, &de) {
		return err
	}

	var se *store.Error
	if errors.As(err, &se) {
		switch se.Kind {
		case store.KindNotFound:
			return domainerrors.NotFoundf("%s not found", what).WithCause(err)
		case store.KindAlreadyExists:
			return domainerrors.AlreadyExistsf("%s already exists", what).WithCause(err)
		case store.KindInvalidInput:
			return domainerrors.Validation(se.Message).WithCause(err)
		}
	}

	return domainerrors.Storage(err, what+": storage failure")
}
