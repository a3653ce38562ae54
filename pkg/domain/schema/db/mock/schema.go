package mocks

import (
	"context"
	"errors"

	kdbmock "github.com/opre/ops/pkg/domain/internal/db/mock"
	kdb "github.com/opre/ops/pkg/domain/schema/db"
)

type SchemaInterface struct {
	Impl struct {
		Upgrade func(ctx context.Context) error
		Version func(ctx context.Context) (int, error)
		Context func(ctx context.Context) (context.Context, context.CancelFunc)
	}
	Calls struct {
		Upgrade kdbmock.CallLog[struct{}]
		Version kdbmock.CallLog[struct{}]
		Context kdbmock.CallLog[struct{}]
	}
}

var _ kdb.Interface = &SchemaInterface{}

func NewSchemaInterface() *SchemaInterface {
	return &SchemaInterface{}
}

func (m *SchemaInterface) Upgrade(ctx context.Context) error {
	m.Calls.Upgrade = append(m.Calls.Upgrade, struct{}{})
	if m.Impl.Upgrade != nil {
		return m.Impl.Upgrade(ctx)
	}
	panic(errors.New("should not be called"))
}

func (m *SchemaInterface) Version(ctx context.Context) (int, error) {
	m.Calls.Version = append(m.Calls.Version, struct{}{})
	if m.Impl.Version != nil {
		return m.Impl.Version(ctx)
	}
	panic(errors.New("should not be called"))
}

func (m *SchemaInterface) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	m.Calls.Context = append(m.Calls.Context, struct{}{})
	if m.Impl.Context != nil {
		return m.Impl.Context(ctx)
	}
	panic(errors.New("should not be called"))
}
