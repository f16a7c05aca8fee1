// Copyright (c) 2023-2026 Fraunhofer Portugal and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package chartregistry

import (
	"context"
	"fmt"

	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
)

// readOnlyStore wraps a credential store so that the registry client can
// never write back to the user's docker config.
type readOnlyStore struct {
	ds *credentials.DynamicStore
}

var _ credentials.Store = (*readOnlyStore)(nil)

func newReadOnlyStore(dynamicStore *credentials.DynamicStore) *readOnlyStore {
	return &readOnlyStore{dynamicStore}
}

func (r readOnlyStore) Get(ctx context.Context, serverAddress string) (auth.Credential, error) {
	return r.ds.Get(ctx, serverAddress)
}

func (r readOnlyStore) Put(ctx context.Context, serverAddress string, cred auth.Credential) error {
	return fmt.Errorf("read-only credential store does not allow put operations")
}

func (r readOnlyStore) Delete(ctx context.Context, serverAddress string) error {
	return fmt.Errorf("read-only credential store does not allow delete operations")
}
