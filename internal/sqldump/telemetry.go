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

package sqldump

import (
	"fmt"

	"go.opentelemetry.io/otel"
	otelmetric "go.opentelemetry.io/otel/metric"
)

var (
	rowsCounter        otelmetric.Int64Counter
	statementsCounter  otelmetric.Int64Counter
	parseErrorsCounter otelmetric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/mwdumps/internal/sqldump")

	var err error
	rowsCounter, err = meter.Int64Counter(
		"mwdumps.sql.rows",
		otelmetric.WithDescription("Number of tuples returned by SQL dump parsers"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create sql.rows counter: %w", err))
	}

	statementsCounter, err = meter.Int64Counter(
		"mwdumps.sql.statements",
		otelmetric.WithDescription("Number of VALUES clauses entered by SQL dump parsers"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create sql.statements counter: %w", err))
	}

	parseErrorsCounter, err = meter.Int64Counter(
		"mwdumps.parse.errors",
		otelmetric.WithDescription("Number of fatal parse errors, by error kind"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create parse.errors counter: %w", err))
	}
}
