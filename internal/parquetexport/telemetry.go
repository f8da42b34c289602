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

package parquetexport

import (
	"fmt"

	"go.opentelemetry.io/otel"
	otelmetric "go.opentelemetry.io/otel/metric"
)

var rowsWrittenCounter otelmetric.Int64Counter

func init() {
	meter := otel.Meter("github.com/cardinalhq/mwdumps/internal/parquetexport")

	var err error
	rowsWrittenCounter, err = meter.Int64Counter(
		"mwdumps.export.rows",
		otelmetric.WithDescription("Number of revision rows written to parquet"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create export.rows counter: %w", err))
	}
}
