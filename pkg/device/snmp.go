package device

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/mfreeman451/routeradar/pkg/models"
)

const (
	oidSysName       = ".1.3.6.1.2.1.1.5.0"
	oidIfPhysAddress = ".1.3.6.1.2.1.2.2.1.6"
	oidIfOperStatus  = ".1.3.6.1.2.1.2.2.1.8"
	oidIfInOctets    = ".1.3.6.1.2.1.2.2.1.10"
	oidIfOutOctets   = ".1.3.6.1.2.1.2.2.1.16"
	oidIfName        = ".1.3.6.1.2.1.31.1.1.1.1"
	oidIfHCInOctets  = ".1.3.6.1.2.1.31.1.1.1.6"
	oidIfHCOutOctets = ".1.3.6.1.2.1.31.1.1.1.10"
	oidIfAlias       = ".1.3.6.1.2.1.31.1.1.1.18"

	ifOperStatusUp = 1
	snmpRetries    = 1
)

// snmpColumn maps ifIndex to the PDU of one table column.
type snmpColumn map[string]gosnmp.SnmpPDU

// snmpProtocol reads interface tables over SNMP v1/v2c.
type snmpProtocol struct {
	client *gosnmp.GoSNMP
	target string
}

func snmpVersion(v string) (gosnmp.SnmpVersion, error) {
	switch strings.ToLower(v) {
	case "v1", "1":
		return gosnmp.Version1, nil
	case "", "v2c", "2c", "2":
		return gosnmp.Version2c, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedVersion, v)
	}
}

func openSNMP(ctx context.Context, dev *models.Device, timeout time.Duration) (Protocol, error) {
	version, err := snmpVersion(dev.SNMP.Version)
	if err != nil {
		return nil, err
	}

	target := net.JoinHostPort(dev.Address, fmt.Sprint(dev.SNMPPort()))

	client := &gosnmp.GoSNMP{
		Context:   ctx,
		Target:    dev.Address,
		Port:      uint16(dev.SNMPPort()), //nolint:gosec // ports fit in uint16
		Community: dev.SNMP.Community,
		Version:   version,
		Timeout:   timeout,
		Retries:   snmpRetries,
		MaxOids:   gosnmp.MaxOids,
	}

	if err := client.Connect(); err != nil {
		return nil, &ProtocolError{Method: models.MethodSNMP, Op: "connect", Target: target, Wrapped: err}
	}

	return &snmpProtocol{client: client, target: target}, nil
}

func (*snmpProtocol) Method() models.ConnectionMethod {
	return models.MethodSNMP
}

func (p *snmpProtocol) Identity(_ context.Context) (string, error) {
	result, err := p.client.Get([]string{oidSysName})
	if err != nil {
		return "", &ProtocolError{Method: models.MethodSNMP, Op: "get", Target: p.target, Wrapped: err}
	}

	for _, pdu := range result.Variables {
		if pdu.Type == gosnmp.OctetString {
			if b, ok := pdu.Value.([]byte); ok {
				return string(b), nil
			}
		}
	}

	return "", &ProtocolError{Method: models.MethodSNMP, Op: "get", Target: p.target, Wrapped: ErrMalformedResponse}
}

func (p *snmpProtocol) walk(root string) (snmpColumn, error) {
	var (
		pdus []gosnmp.SnmpPDU
		err  error
	)

	if p.client.Version == gosnmp.Version1 {
		pdus, err = p.client.WalkAll(root)
	} else {
		pdus, err = p.client.BulkWalkAll(root)
	}

	if err != nil {
		return nil, &ProtocolError{Method: models.MethodSNMP, Op: "walk " + root, Target: p.target, Wrapped: err}
	}

	col := make(snmpColumn, len(pdus))

	for _, pdu := range pdus {
		if idx, ok := strings.CutPrefix(pdu.Name, root+"."); ok {
			col[idx] = pdu
		}
	}

	return col, nil
}

func (p *snmpProtocol) ListInterfaces(_ context.Context) ([]models.InterfaceInfo, error) {
	tables := make(map[string]snmpColumn)

	for _, root := range []string{oidIfName, oidIfAlias, oidIfOperStatus, oidIfPhysAddress, oidIfHCInOctets, oidIfHCOutOctets} {
		col, err := p.walk(root)
		if err != nil {
			return nil, err
		}

		tables[root] = col
	}

	// Devices without the 64-bit counters (SNMPv1) only expose ifTable.
	if len(tables[oidIfHCInOctets]) == 0 {
		for _, root := range []string{oidIfInOctets, oidIfOutOctets} {
			col, err := p.walk(root)
			if err != nil {
				return nil, err
			}

			tables[root] = col
		}

		tables[oidIfHCInOctets] = tables[oidIfInOctets]
		tables[oidIfHCOutOctets] = tables[oidIfOutOctets]
	}

	infos, err := buildSNMPInterfaces(tables)
	if err != nil {
		return nil, &ProtocolError{Method: models.MethodSNMP, Op: "interfaces", Target: p.target, Wrapped: err}
	}

	return infos, nil
}

// buildSNMPInterfaces joins the walked columns on ifIndex. The result is
// sorted by name.
func buildSNMPInterfaces(tables map[string]snmpColumn) ([]models.InterfaceInfo, error) {
	names := tables[oidIfName]
	infos := make([]models.InterfaceInfo, 0, len(names))

	for idx, pdu := range names {
		name, ok := octets(pdu)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: ifName.%s", ErrMalformedResponse, idx)
		}

		info := models.InterfaceInfo{Name: name}

		if alias, ok := octets(tables[oidIfAlias][idx]); ok {
			info.Comment = alias
		}

		if mac, ok := tables[oidIfPhysAddress][idx].Value.([]byte); ok && len(mac) > 0 {
			info.MAC = strings.ToUpper(net.HardwareAddr(mac).String())
		}

		if status, ok := tables[oidIfOperStatus][idx]; ok {
			info.Running = gosnmp.ToBigInt(status.Value).Int64() == ifOperStatusUp
		}

		if in, ok := tables[oidIfHCInOctets][idx]; ok {
			info.RxBytes = gosnmp.ToBigInt(in.Value).Uint64()
		}

		if out, ok := tables[oidIfHCOutOctets][idx]; ok {
			info.TxBytes = gosnmp.ToBigInt(out.Value).Uint64()
		}

		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	return infos, nil
}

func octets(pdu gosnmp.SnmpPDU) (string, bool) {
	switch v := pdu.Value.(type) {
	case []byte:
		return string(v), true
	case string:
		return v, true
	default:
		return "", false
	}
}

func (p *snmpProtocol) Close() error {
	if p.client.Conn == nil {
		return nil
	}

	return p.client.Conn.Close()
}
