package device

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mfreeman451/routeradar/pkg/models"
)

// parseRouterOSRow converts one /interface row, as returned by both the
// binary API and the REST API, into an InterfaceInfo.
func parseRouterOSRow(row map[string]string) (models.InterfaceInfo, error) {
	name := strings.TrimSpace(row["name"])
	if name == "" {
		return models.InterfaceInfo{}, fmt.Errorf("%w: interface without name", ErrMalformedResponse)
	}

	rx, err := parseCounter(row["rx-byte"])
	if err != nil {
		return models.InterfaceInfo{}, fmt.Errorf("interface %s rx-byte: %w", name, err)
	}

	tx, err := parseCounter(row["tx-byte"])
	if err != nil {
		return models.InterfaceInfo{}, fmt.Errorf("interface %s tx-byte: %w", name, err)
	}

	return models.InterfaceInfo{
		Name:    name,
		Comment: row["comment"],
		MAC:     row["mac-address"],
		Running: row["running"] == "true",
		RxBytes: rx,
		TxBytes: tx,
	}, nil
}

// parseCounter accepts an empty value as zero; some virtual interfaces
// report no counters at all.
func parseCounter(v string) (uint64, error) {
	if v == "" {
		return 0, nil
	}

	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return n, nil
}

func parseRouterOSRows(rows []map[string]string) ([]models.InterfaceInfo, error) {
	out := make([]models.InterfaceInfo, 0, len(rows))

	for _, row := range rows {
		info, err := parseRouterOSRow(row)
		if err != nil {
			return nil, err
		}

		out = append(out, info)
	}

	return out, nil
}
