// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package dumpsource

import (
	"fmt"

	"go.opentelemetry.io/otel"
	otelmetric "go.opentelemetry.io/otel/metric"
)

var (
	sourcesOpenedCounter otelmetric.Int64Counter
	bytesReadCounter     otelmetric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/mwdumps/internal/dumpsource")

	var err error
	sourcesOpenedCounter, err = meter.Int64Counter(
		"mwdumps.source.opened",
		otelmetric.WithDescription("Number of dump sources opened, by container format"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create source.opened counter: %w", err))
	}

	bytesReadCounter, err = meter.Int64Counter(
		"mwdumps.source.bytes",
		otelmetric.WithUnit("By"),
		otelmetric.WithDescription("Decoded bytes delivered by dump sources, recorded on close"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create source.bytes counter: %w", err))
	}
}
