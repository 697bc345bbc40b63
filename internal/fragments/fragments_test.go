package fragments

import (
	"bytes"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/ginjaninja78/opnsense-config-faker/internal/config"
	"github.com/ginjaninja78/opnsense-config-faker/internal/types"
	"github.com/ginjaninja78/opnsense-config-faker/internal/xmlsplice"
)

// testRecords returns the fixed record list most tests render.
func testRecords() []types.VlanRecord {
	return []types.VlanRecord{
		{VlanID: 100, NetworkBase: "192.168.100.x", Description: "TestVLAN", WANAssignment: 1},
		{VlanID: 200, NetworkBase: "10.20.30.x", Description: "Sales200", WANAssignment: 2},
	}
}

// testOptions returns options with a starting counter of 1 on firewall 1.
func testOptions() config.Options {
	options := config.Default()
	options.OptCounter = 1
	options.FirewallNumber = 1
	return options
}

// render runs one renderer and checks the output parses as a well-formed
// fragment.
func render(t *testing.T, fn RenderFunc, records []types.VlanRecord, opts config.Options) string {
	t.Helper()

	var buffer bytes.Buffer
	rng := rand.New(rand.NewSource(1))

	if err := fn(&buffer, records, opts, rng); err != nil {
		t.Fatalf("render error = %v", err)
	}

	if _, err := xmlsplice.ParseFragment(buffer.Bytes()); err != nil {
		t.Fatalf("rendered fragment is not well-formed: %v\n%s", err, buffer.String())
	}

	return buffer.String()
}

func TestModulesTable(t *testing.T) {
	modules := Modules()

	if len(modules) != 7 {
		t.Fatalf("expected 7 modules, got %d", len(modules))
	}

	want := []struct {
		name    string
		tagPath string
	}{
		{"Interface", "./interfaces"},
		{"DHCP", "./dhcpd"},
		{"NAT", "./nat/outbound"},
		{"Rules", "./filter"},
		{"CARP", "./virtualip"},
		{"VLAN", "./vlans"},
		{"RadiusUser", "./OPNsense/freeradius/user/users"},
	}

	for i, module := range modules {
		if module.Order != i+1 {
			t.Errorf("module %d has order %d", i, module.Order)
		}
		if module.Name != want[i].name {
			t.Errorf("module %d name = %s, want %s", i, module.Name, want[i].name)
		}
		if module.TagPath != want[i].tagPath {
			t.Errorf("module %s tag path = %s, want %s", module.Name, module.TagPath, want[i].tagPath)
		}
		if module.Render == nil {
			t.Errorf("module %s has no renderer", module.Name)
		}
	}

	if name := modules[2].FileName(); name != "part3_NAT.xml" {
		t.Errorf("FileName() = %s, want part3_NAT.xml", name)
	}
}

func TestRenderInterface(t *testing.T) {
	output := render(t, RenderInterface, testRecords(), testOptions())

	for _, want := range []string{
		"<opt1>",
		"<if>vlan0100</if>",
		"<descr>V100_TestVLAN</descr>",
		"<ipaddr>192.168.100.251</ipaddr>",
		"<subnet>24</subnet>",
		"<opt2>",
		"<if>vlan0200</if>",
		"<ipaddr>10.20.30.251</ipaddr>",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("interface fragment missing %q:\n%s", want, output)
		}
	}
}

func TestRenderInterfaceFirewallNumberShiftsSuffix(t *testing.T) {
	options := testOptions()
	options.FirewallNumber = 2

	output := render(t, RenderInterface, testRecords(), options)

	if !strings.Contains(output, "<ipaddr>192.168.100.252</ipaddr>") {
		t.Errorf("firewall number 2 should yield .252 suffix:\n%s", output)
	}
}

func TestRenderInterfaceEscapesDescription(t *testing.T) {
	records := []types.VlanRecord{
		{VlanID: 300, NetworkBase: "10.1.2.x", Description: "Büro West-1", WANAssignment: 1},
	}

	output := render(t, RenderInterface, records, testOptions())

	if !strings.Contains(output, "<descr>V300_BueroWest_1</descr>") {
		t.Errorf("description not sanitized:\n%s", output)
	}
}

func TestRenderDHCP(t *testing.T) {
	output := render(t, RenderDHCP, testRecords(), testOptions())

	for _, want := range []string{
		"<opt1>",
		"<from>192.168.100.1</from>",
		"<to>192.168.100.100</to>",
		"<gateway>192.168.100.254</gateway>",
		"<dnsserver>192.168.100.254</dnsserver>",
		"<failover_peerip>192.168.100.252</failover_peerip>",
		"<ddnsdomainalgorithm>hmac-md5</ddnsdomainalgorithm>",
		"<opt2>",
		"<from>10.20.30.1</from>",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("DHCP fragment missing %q:\n%s", want, output)
		}
	}
}

func TestRenderNAT(t *testing.T) {
	output := render(t, RenderNAT, testRecords(), testOptions())

	// Record 1 is assigned WAN 1, record 2 WAN 2.
	for _, want := range []string{
		"<network>opt1</network>",
		"<target>10.11.12.11</target>",
		"<network>opt2</network>",
		"<target>10.11.12.12</target>",
		"<interface>wan</interface>",
		"<descr>TestVLAN</descr>",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("NAT fragment missing %q:\n%s", want, output)
		}
	}

	// Timestamps are epoch seconds with four decimal places.
	if !regexp.MustCompile(`<time>\d+\.\d{4}</time>`).MatchString(output) {
		t.Errorf("NAT fragment has no %%.4f timestamp:\n%s", output)
	}
}

func TestRenderNATInvalidWANAssignment(t *testing.T) {
	records := []types.VlanRecord{
		{VlanID: 100, NetworkBase: "10.0.0.x", Description: "Test", WANAssignment: 1},
		{VlanID: 200, NetworkBase: "10.0.1.x", Description: "Bad", WANAssignment: 7},
	}

	var buffer bytes.Buffer
	err := RenderNAT(&buffer, records, testOptions(), rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatal("RenderNAT() succeeded with WAN assignment 7")
	}

	// Validation happens before any output is written.
	if buffer.Len() != 0 {
		t.Errorf("RenderNAT() wrote %d bytes before failing validation", buffer.Len())
	}
}

func TestRenderRules(t *testing.T) {
	output := render(t, RenderRules, testRecords(), testOptions())

	for _, want := range []string{
		"<type>pass</type>",
		"<interface>opt1</interface>",
		"<descr>default allow VLAN_100 any</descr>",
		"<interface>opt2</interface>",
		"<descr>default allow VLAN_200 any</descr>",
		"<statetype>keep state</statetype>",
		"<quick>1</quick>",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("rules fragment missing %q:\n%s", want, output)
		}
	}

	if !regexp.MustCompile(`<rule uuid="[0-9a-f-]{36}">`).MatchString(output) {
		t.Errorf("rules fragment has no uuid attribute:\n%s", output)
	}
}

func TestRenderCARP(t *testing.T) {
	tests := []struct {
		name           string
		firewallNumber int
		wantAdvskew    string
	}{
		{"master", 1, "<advskew>0</advskew>"},
		{"backup", 2, "<advskew>100</advskew>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options := testOptions()
			options.FirewallNumber = tt.firewallNumber

			output := render(t, RenderCARP, testRecords(), options)

			if !strings.Contains(output, tt.wantAdvskew) {
				t.Errorf("CARP fragment missing %q:\n%s", tt.wantAdvskew, output)
			}

			for _, want := range []string{
				"<mode>carp</mode>",
				"<subnet>192.168.100.254</subnet>",
				"<vhid>100</vhid>",
				"<vhid>200</vhid>",
				"<advbase>1</advbase>",
			} {
				if !strings.Contains(output, want) {
					t.Errorf("CARP fragment missing %q:\n%s", want, output)
				}
			}

			passwords := regexp.MustCompile(`<password>([A-Za-z0-9]+)</password>`).FindAllStringSubmatch(output, -1)
			if len(passwords) != 2 {
				t.Fatalf("expected 2 alphanumeric passwords, found %d", len(passwords))
			}
			for _, match := range passwords {
				if len(match[1]) != 32 {
					t.Errorf("password length = %d, want 32", len(match[1]))
				}
			}
		})
	}
}

func TestRenderCARPDeterministicPasswords(t *testing.T) {
	var first, second bytes.Buffer

	if err := RenderCARP(&first, testRecords(), testOptions(), rand.New(rand.NewSource(77))); err != nil {
		t.Fatalf("RenderCARP() error = %v", err)
	}
	if err := RenderCARP(&second, testRecords(), testOptions(), rand.New(rand.NewSource(77))); err != nil {
		t.Fatalf("RenderCARP() error = %v", err)
	}

	extract := func(s string) []string {
		matches := regexp.MustCompile(`<password>([A-Za-z0-9]+)</password>`).FindAllStringSubmatch(s, -1)
		var passwords []string
		for _, m := range matches {
			passwords = append(passwords, m[1])
		}
		return passwords
	}

	passwordsA := extract(first.String())
	passwordsB := extract(second.String())

	for i := range passwordsA {
		if passwordsA[i] != passwordsB[i] {
			t.Errorf("password %d differs between identically seeded runs", i)
		}
	}
}

func TestRenderVLAN(t *testing.T) {
	output := render(t, RenderVLAN, testRecords(), testOptions())

	for _, want := range []string{
		"<if>lagg0</if>",
		"<tag>100</tag>",
		"<vlanif>vlan0100</vlanif>",
		"<tag>200</tag>",
		"<vlanif>vlan0200</vlanif>",
		"<descr>TestVLAN</descr>",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("VLAN fragment missing %q:\n%s", want, output)
		}
	}
}

func TestRenderRadiusUser(t *testing.T) {
	records := []types.VlanRecord{
		{VlanID: 100, NetworkBase: "10.0.0.x", Description: "Gäste WLAN", WANAssignment: 1},
	}

	output := render(t, RenderRadiusUser, records, testOptions())

	for _, want := range []string{
		"<username>top100</username>",
		"<password>GaesteWLAN</password>",
		"<vlan>100</vlan>",
		"<enabled>1</enabled>",
		"<linkedAVPair/>",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("RADIUS fragment missing %q:\n%s", want, output)
		}
	}
}

func TestRenderToFile(t *testing.T) {
	dir := t.TempDir()
	module := Modules()[5] // VLAN

	path := filepath.Join(dir, module.FileName())
	err := RenderToFile(module, path, testRecords(), testOptions(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("RenderToFile() error = %v", err)
	}

	elements := parseFragmentFile(t, path)
	if len(elements) != 2 {
		t.Errorf("expected 2 vlan elements, got %d", len(elements))
	}
}

func TestRenderToFileWrapsErrors(t *testing.T) {
	dir := t.TempDir()
	module := Modules()[2] // NAT

	records := []types.VlanRecord{
		{VlanID: 100, NetworkBase: "10.0.0.x", Description: "Bad", WANAssignment: 9},
	}

	err := RenderToFile(module, filepath.Join(dir, module.FileName()), records, testOptions(), rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatal("RenderToFile() succeeded with invalid WAN assignment")
	}

	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("error type = %T, want *RenderError", err)
	}
	if renderErr.Part != "NAT" {
		t.Errorf("RenderError.Part = %s, want NAT", renderErr.Part)
	}
}

// parseFragmentFile reads and parses a fragment file.
func parseFragmentFile(t *testing.T, path string) []*xmlsplice.Element {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fragment: %v", err)
	}

	elements, err := xmlsplice.ParseFragment(content)
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	return elements
}
