package device

import (
	"strings"

	"github.com/mfreeman451/routeradar/pkg/models"
)

// dynamicPrefixes are interface name prefixes of per-session tunnels that
// come and go with client connections.
var dynamicPrefixes = []string{"pppoe-", "pptp-", "l2tp-", "sstp-", "ovpn-"}

// IsDynamic reports whether name belongs to a dynamic tunnel interface.
// RouterOS decorates such names as "<pppoe-user>", so brackets are stripped.
func IsDynamic(name string) bool {
	n := strings.ToLower(strings.Trim(strings.TrimSpace(name), "<>[]"))

	for _, prefix := range dynamicPrefixes {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}

	return false
}

// FilterInterfaces applies a device's interface policy.
func FilterInterfaces(policy models.InterfacePolicy, rows []models.InterfaceInfo) []models.InterfaceInfo {
	switch policy {
	case models.PolicyNone:
		return []models.InterfaceInfo{}
	case models.PolicyStaticOnly:
		out := make([]models.InterfaceInfo, 0, len(rows))

		for _, row := range rows {
			if !IsDynamic(row.Name) {
				out = append(out, row)
			}
		}

		return out
	default:
		return rows
	}
}
