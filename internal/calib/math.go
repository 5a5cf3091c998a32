// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package calib

import "math"

func logf(x float64) float64 {
	return math.Log(x)
}
