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

package xmldump

import (
	"fmt"

	"go.opentelemetry.io/otel"
	otelmetric "go.opentelemetry.io/otel/metric"
)

var (
	pagesCounter       otelmetric.Int64Counter
	revisionsCounter   otelmetric.Int64Counter
	parseErrorsCounter otelmetric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/mwdumps/internal/xmldump")

	var err error
	pagesCounter, err = meter.Int64Counter(
		"mwdumps.xml.pages",
		otelmetric.WithDescription("Number of pages completed by XML dump parsers"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create xml.pages counter: %w", err))
	}

	revisionsCounter, err = meter.Int64Counter(
		"mwdumps.xml.revisions",
		otelmetric.WithDescription("Number of revisions completed by XML dump parsers"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create xml.revisions counter: %w", err))
	}

	parseErrorsCounter, err = meter.Int64Counter(
		"mwdumps.parse.errors",
		otelmetric.WithDescription("Number of fatal parse errors, by error kind"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create parse.errors counter: %w", err))
	}
}
