// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package connid generates opaque per-connection identifiers used for
// log and metric correlation. They carry no protocol meaning and are
// never part of a Request value.
package connid

import "github.com/google/uuid"

// ID is an opaque connection identifier.
type ID string

// New returns a fresh, randomly generated connection id.
func New() ID {
	return ID(uuid.NewString())
}

func (id ID) String() string { return string(id) }
