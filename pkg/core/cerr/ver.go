// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cerr

import (
	"fmt"

	"github.com/momeni/school-library/pkg/core/model"
)

// MismatchingSemVerError reports a configuration file or a database
// schema whose version is not supported by this program.
type MismatchingSemVerError struct {
	Expected model.SemVer
	Actual   model.SemVer
}

func (e *MismatchingSemVerError) Error() string {
	return fmt.Sprintf("expected v%s, but got v%s", e.Expected, e.Actual)
}
