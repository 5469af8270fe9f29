package crowdfund

import "github.com/iov-one/crowdfund/errors"

// Metadata is carried by every persisted model. Schema declares the version
// of the serialization format the model was written with.
type Metadata struct {
	Schema uint32 `json:"schema"`
}

// Validate returns an error if the metadata is not usable.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrMetadata, "missing")
	}
	if m.Schema < 1 {
		return errors.Wrap(errors.ErrMetadata, "schema version must be at least 1")
	}
	return nil
}

// Copy returns a copy of this object. This method is helpful when implementing
// orm.CloneableData interface to make a copy of the header.
func (m *Metadata) Copy() *Metadata {
	cpy := *m
	return &cpy
}
