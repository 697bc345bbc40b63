// =============================================================================
// OPNsense Config Faker - Fragment Renderer Module
// =============================================================================
//
// This module renders the per-concern XML fragments that are later spliced
// into a base OPNsense configuration document. Seven renderers share the
// same shape: iterate the record list in order and emit one fixed-structure
// element per record (raw text, not a parsed document):
//
//   Interface  - one <optN> interface per record
//   DHCP       - one <optN> DHCP scope per record
//   NAT        - one outbound NAT <rule> per record
//   Rules      - one pass-all firewall <rule> per record
//   CARP       - one <vip> virtual IP per record
//   VLAN       - one <vlan> tag binding per record
//   RadiusUser - one RADIUS <user> per record
//
// The fixed pipeline (render order, part name, injection target path) is
// expressed as the Modules table rather than inline sequential calls, so it
// can be tested as a unit and reused by the assembler for both rendering
// and splicing.
//
// ADDRESSING CONVENTIONS (per /24 network base A.B.C.x):
//   .1-.100          DHCP lease range
//   .250+firewallNr  interface address of this firewall
//   .252             DHCP failover peer
//   .254             gateway / DNS / CARP virtual IP
//
// =============================================================================

package fragments

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/opnsense-config-faker/internal/config"
	"github.com/ginjaninja78/opnsense-config-faker/internal/escape"
	"github.com/ginjaninja78/opnsense-config-faker/internal/generator"
	"github.com/ginjaninja78/opnsense-config-faker/internal/types"
)

// =============================================================================
// ERRORS
// =============================================================================

// RenderError wraps a failure while rendering one fragment. A failed
// fragment aborts that fragment's write entirely; no partial-fragment
// recovery is attempted.
type RenderError struct {
	// Part is the fragment name (e.g. "NAT").
	Part string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %s fragment: %v", e.Part, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// =============================================================================
// MODULE TABLE
// =============================================================================

// RenderFunc renders one fragment for the full record list. Renderers that
// do not need options or randomness ignore those arguments.
type RenderFunc func(w io.Writer, records []types.VlanRecord, opts config.Options, rng *rand.Rand) error

// Module describes one entry of the fixed generation/injection pipeline.
type Module struct {
	// Order is the 1-based position in the pipeline. Rendering and
	// splicing both follow ascending order.
	Order int

	// Name is the human-readable part name, used in file names and logs.
	Name string

	// TagPath is the injection target inside the base document, as a
	// ./a/b tag sequence relative to the document root.
	TagPath string

	// Render is the fragment renderer for this concern.
	Render RenderFunc
}

// FileName returns the on-disk name of this module's fragment file,
// e.g. "part3_NAT.xml".
func (m Module) FileName() string {
	return fmt.Sprintf("part%d_%s.xml", m.Order, m.Name)
}

// Modules returns the pipeline table in its fixed order.
func Modules() []Module {
	return []Module{
		{Order: 1, Name: "Interface", TagPath: "./interfaces", Render: RenderInterface},
		{Order: 2, Name: "DHCP", TagPath: "./dhcpd", Render: RenderDHCP},
		{Order: 3, Name: "NAT", TagPath: "./nat/outbound", Render: RenderNAT},
		{Order: 4, Name: "Rules", TagPath: "./filter", Render: RenderRules},
		{Order: 5, Name: "CARP", TagPath: "./virtualip", Render: RenderCARP},
		{Order: 6, Name: "VLAN", TagPath: "./vlans", Render: RenderVLAN},
		{Order: 7, Name: "RadiusUser", TagPath: "./OPNsense/freeradius/user/users", Render: RenderRadiusUser},
	}
}

// RenderToFile renders one module's fragment to filePath. Any failure is
// wrapped into a *RenderError carrying the part name.
func RenderToFile(m Module, filePath string, records []types.VlanRecord, opts config.Options, rng *rand.Rand) error {
	file, err := os.Create(filePath)
	if err != nil {
		return &RenderError{Part: m.Name, Err: err}
	}

	if err := m.Render(file, records, opts, rng); err != nil {
		file.Close()
		return &RenderError{Part: m.Name, Err: err}
	}

	if err := file.Close(); err != nil {
		return &RenderError{Part: m.Name, Err: err}
	}

	return nil
}

// =============================================================================
// RENDERERS
// =============================================================================

// RenderInterface emits one <optN> interface element per record. The
// synthetic interface index starts at opts.OptCounter and increments per
// record; the interface address is the record's network base with its last
// octet replaced by 250 + firewall number.
func RenderInterface(w io.Writer, records []types.VlanRecord, opts config.Options, _ *rand.Rand) error {
	optCounter := opts.OptCounter
	ipSuffix := 250 + opts.FirewallNumber

	for _, record := range records {
		ipAddress := strings.Replace(record.NetworkBase, ".x", fmt.Sprintf(".%d", ipSuffix), 1)
		description := escape.String(record.Description)

		if _, err := fmt.Fprintf(w,
			"<opt%d>\n"+
				"  <if>vlan0%d</if>\n"+
				"  <descr>V%d_%s</descr>\n"+
				"  <enable>1</enable>\n"+
				"  <spoofmac/>\n"+
				"  <ipaddr>%s</ipaddr>\n"+
				"  <subnet>24</subnet>\n"+
				"</opt%d>\n",
			optCounter, record.VlanID, record.VlanID, description, ipAddress, optCounter); err != nil {
			return err
		}

		optCounter++
	}

	return nil
}

// RenderDHCP emits one <optN> DHCP scope per record, deriving the lease
// range and auxiliary addresses from the record's /24 base by the fixed
// offset convention documented above.
func RenderDHCP(w io.Writer, records []types.VlanRecord, opts config.Options, _ *rand.Rand) error {
	optCounter := opts.OptCounter

	for _, record := range records {
		base := strings.Replace(record.NetworkBase, ".x", "", 1)

		if _, err := fmt.Fprintf(w,
			"<opt%d>\n"+
				"  <enable>1</enable>\n"+
				"  <failover_peerip>%s.252</failover_peerip>\n"+
				"  <gateway>%s.254</gateway>\n"+
				"  <ddnsdomainalgorithm>hmac-md5</ddnsdomainalgorithm>\n"+
				"  <numberoptions>\n    <item/>\n  </numberoptions>\n"+
				"  <range>\n    <from>%s.1</from>\n    <to>%s.100</to>\n  </range>\n"+
				"  <winsserver/>\n"+
				"  <dnsserver>%s.254</dnsserver>\n"+
				"  <ntpserver/>\n"+
				"</opt%d>\n",
			optCounter, base, base, base, base, base, optCounter); err != nil {
			return err
		}

		optCounter++
	}

	return nil
}

// RenderNAT emits one outbound NAT rule per record, targeting the WAN
// address selected by the record's WAN assignment. WAN assignments are
// validated for the whole list before any output is written, so an invalid
// record never leaves a partial fragment. The generator only produces
// assignments in {1, 2, 3}; this check guards hand-edited CSV input.
func RenderNAT(w io.Writer, records []types.VlanRecord, opts config.Options, _ *rand.Rand) error {
	for i, record := range records {
		if _, ok := opts.WAN(record.WANAssignment); !ok {
			return fmt.Errorf("record %d: WAN assignment %d outside valid range [1, 3]", i+1, record.WANAssignment)
		}
	}

	optCounter := opts.OptCounter

	for _, record := range records {
		wanIP, _ := opts.WAN(record.WANAssignment)
		ts := timestamp()

		if _, err := fmt.Fprintf(w,
			"<rule>\n"+
				"  <source>\n    <network>opt%d</network>\n  </source>\n"+
				"  <destination>\n    <any>1</any>\n  </destination>\n"+
				"  <descr>%s</descr>\n"+
				"  <category/>\n"+
				"  <interface>wan</interface>\n"+
				"  <tag/>\n"+
				"  <tagged/>\n"+
				"  <poolopts/>\n"+
				"  <poolopts_sourcehashkey/>\n"+
				"  <ipprotocol>inet</ipprotocol>\n"+
				"  <created>\n    <username>root@10.1.1.1</username>\n    <time>%s</time>\n    <description>OPNsense Config Faker</description>\n  </created>\n"+
				"  <target>%s</target>\n"+
				"  <sourceport/>\n"+
				"  <updated>\n    <username>root@10.1.1.1</username>\n    <time>%s</time>\n    <description>OPNsense Config Faker</description>\n  </updated>\n"+
				"</rule>\n",
			optCounter, record.Description, ts, wanIP, ts); err != nil {
			return err
		}

		optCounter++
	}

	return nil
}

// RenderRules emits one pass-all firewall rule per record, tagged with the
// record's synthetic interface index.
func RenderRules(w io.Writer, records []types.VlanRecord, opts config.Options, _ *rand.Rand) error {
	optCounter := opts.OptCounter

	for _, record := range records {
		ts := timestamp()

		if _, err := fmt.Fprintf(w,
			"<rule uuid=\"%s\">\n"+
				"  <type>pass</type>\n"+
				"  <interface>opt%d</interface>\n"+
				"  <ipprotocol>inet</ipprotocol>\n"+
				"  <statetype>keep state</statetype>\n"+
				"  <descr>default allow VLAN_%d any</descr>\n"+
				"  <direction>in</direction>\n"+
				"  <quick>1</quick>\n"+
				"  <source>\n    <any>1</any>\n  </source>\n"+
				"  <destination>\n    <any>1</any>\n  </destination>\n"+
				"  <updated>\n    <username>root@10.1.1.1</username>\n    <time>%s</time>\n    <description>OPNsense Config Faker</description>\n  </updated>\n"+
				"  <created>\n    <username>root@10.1.1.1</username>\n    <time>%s</time>\n    <description>OPNsense Config Faker</description>\n  </created>\n"+
				"</rule>\n\n",
			uuid.New().String(), optCounter, record.VlanID, ts, ts); err != nil {
			return err
		}

		optCounter++
	}

	return nil
}

// RenderCARP emits one CARP virtual IP per record. The record's VLAN id
// doubles as the CARP virtual host id, the virtual IP is the network base
// with .254, and advskew encodes master/backup priority: 0 for firewall
// number 1, 100 for every other firewall.
func RenderCARP(w io.Writer, records []types.VlanRecord, opts config.Options, rng *rand.Rand) error {
	optCounter := opts.OptCounter

	advskew := "100"
	if opts.FirewallNumber == 1 {
		advskew = "0"
	}

	for _, record := range records {
		virtualIP := strings.Replace(record.NetworkBase, ".x", ".254", 1)
		password := generator.RandomPassword(rng, 32)

		if _, err := fmt.Fprintf(w,
			"  <vip uuid=\"%s\">\n"+
				"    <interface>opt%d</interface>\n"+
				"    <mode>carp</mode>\n"+
				"    <subnet>%s</subnet>\n"+
				"    <subnet_bits>24</subnet_bits>\n"+
				"    <gateway/>\n"+
				"    <noexpand>0</noexpand>\n"+
				"    <nobind>0</nobind>\n"+
				"    <password>%s</password>\n"+
				"    <vhid>%d</vhid>\n"+
				"    <advbase>1</advbase>\n"+
				"    <advskew>%s</advskew>\n"+
				"    <descr>%s</descr>\n"+
				"  </vip>\n",
			uuid.New().String(), optCounter, virtualIP, password, record.VlanID, advskew, record.Description); err != nil {
			return err
		}

		optCounter++
	}

	return nil
}

// RenderVLAN emits one VLAN tag element per record, binding the VLAN id to
// the fixed lagg0 parent link and its synthetic vlan0<id> interface name.
func RenderVLAN(w io.Writer, records []types.VlanRecord, _ config.Options, _ *rand.Rand) error {
	for _, record := range records {
		if _, err := fmt.Fprintf(w,
			"    <vlan uuid=\"%s\">\n"+
				"      <if>lagg0</if>\n"+
				"      <tag>%d</tag>\n"+
				"      <pcp>0</pcp>\n"+
				"      <proto/>\n"+
				"      <descr>%s</descr>\n"+
				"      <vlanif>vlan0%d</vlanif>\n"+
				"    </vlan>\n",
			uuid.New().String(), record.VlanID, record.Description, record.VlanID); err != nil {
			return err
		}
	}

	return nil
}

// RenderRadiusUser emits one RADIUS user per record. The username is
// derived from the VLAN id and the password is the sanitized description.
// The long tail of empty elements matches the freeradius plugin schema,
// which expects every field to be present.
func RenderRadiusUser(w io.Writer, records []types.VlanRecord, _ config.Options, _ *rand.Rand) error {
	for _, record := range records {
		if _, err := fmt.Fprintf(w,
			"        <user uuid=\"%s\">\n"+
				"          <enabled>1</enabled>\n"+
				"          <username>top%d</username>\n"+
				"          <password>%s</password>\n"+
				"          <description>%s</description>\n"+
				"          <ip/>\n"+
				"          <subnet/>\n"+
				"          <route/>\n"+
				"          <ip6/>\n"+
				"          <vlan>%d</vlan>\n"+
				"          <logintime/>\n"+
				"          <simuse/>\n"+
				"          <exos_vlan_untagged/>\n"+
				"          <exos_vlan_tagged/>\n"+
				"          <exos_policy/>\n"+
				"          <wispr_bw_min_up/>\n"+
				"          <wispr_bw_max_up/>\n"+
				"          <wispr_bw_min_down/>\n"+
				"          <wispr_bw_max_down/>\n"+
				"          <chillispot_bw_max_up/>\n"+
				"          <chillispot_bw_max_down/>\n"+
				"          <mikrotik_vlan_id_number/>\n"+
				"          <mikrotik_vlan_id_type/>\n"+
				"          <sessionlimit_max_session_limit/>\n"+
				"          <servicetype/>\n"+
				"          <linkedAVPair/>\n"+
				"        </user>\n",
			uuid.New().String(), record.VlanID, escape.String(record.Description), record.Description, record.VlanID); err != nil {
			return err
		}
	}

	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// timestamp returns the wall-clock time as epoch seconds with four decimal
// places, the format OPNsense stores in created/updated blocks.
func timestamp() string {
	return fmt.Sprintf("%.4f", float64(time.Now().UnixNano())/1e9)
}
