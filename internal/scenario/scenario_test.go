package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/weldshop/internal/domain/pricing"
	"github.com/GriffinCanCode/weldshop/internal/domain/workshop"
	"github.com/GriffinCanCode/weldshop/internal/solver"
)

const yamlScenario = `
name: yaml-run
workers: 3
stall_warning: 2s
suppliers:
  - name: north
    delay: 5ms
    catalog:
      - material: 1
        plates:
          - {w: 2, h: 4, cost: 10.0}
  - catalog:
      - material: 1
        plates:
          - {w: 4, h: 2, cost: 7.0}
customers:
  - name: acme
    repeat: 2
    orders:
      - material: 1
        items:
          - {w: 2, h: 4, welding_strength: 1.5}
`

const tomlScenario = `
name = "toml-run"
workers = 2

[[suppliers]]
name = "north"
delay = "1ms"

[[suppliers.catalog]]
material = 1
plates = [{ w = 1, h = 1, cost = 2.0 }]

[[customers]]
name = "acme"

[[customers.orders]]
material = 1
items = [{ w = 2, h = 1, welding_strength = 0.5 }]
`

const jsonScenario = `{
  "name": "json-run",
  "suppliers": [
    {"name": "north", "catalog": [{"material": 4, "plates": [{"w": 3, "h": 3, "cost": 1.0}]}]}
  ],
  "customers": [
    {"name": "acme", "rps": 100, "burst": 2, "orders": [{"material": 4, "items": [{"w": 3, "h": 3}]}]}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.yaml", yamlScenario)

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "yaml-run", s.Name)
	assert.Equal(t, path, s.Source)
	assert.Equal(t, 3, s.Workers)
	assert.Equal(t, 2*time.Second, s.StallWarning.Std())
	require.Len(t, s.Suppliers, 2)
	assert.Equal(t, 5*time.Millisecond, s.Suppliers[0].Delay.Std())
	assert.True(t, strings.HasPrefix(s.Suppliers[1].Name, "supplier-"), "unnamed supplier gets a generated name")
	assert.Equal(t, []pricing.Plate{{W: 2, H: 4, Cost: 10}}, s.Suppliers[0].CatalogMap()[1])

	require.Len(t, s.Customers, 1)
	assert.Len(t, s.Customers[0].Script(), 2)
	assert.Equal(t, 2, s.TotalOrders())
	assert.Equal(t, 1.5, s.Customers[0].Orders[0].Items[0].WeldingStrength)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.toml", tomlScenario)

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "toml-run", s.Name)
	assert.Equal(t, time.Millisecond, s.Suppliers[0].Delay.Std())
	assert.Equal(t, pricing.MaterialID(1), s.Customers[0].Orders[0].Material)
	assert.Equal(t, uint32(2), s.Customers[0].Orders[0].Items[0].W)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.json", jsonScenario)

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "json-run", s.Name)
	assert.Equal(t, 100.0, s.Customers[0].Rate)
	assert.Equal(t, 2, s.Customers[0].Burst)
	assert.Equal(t, []pricing.Plate{{W: 3, H: 3, Cost: 1}}, s.Suppliers[0].CatalogMap()[4])
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(writeFile(t, dir, "run.ini", "name=x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "broken.json", "{"))
	assert.Error(t, err)
}

func TestValidateCollectsProblems(t *testing.T) {
	_, err := Parse([]byte(`
customers:
  - name: bad
    rps: -1
    orders:
      - material: 1
        items:
          - {w: 0, h: 2}
`), FormatYAML)

	require.ErrorIs(t, err, ErrInvalidScenario)
	msg := err.Error()
	assert.Contains(t, msg, "at least one supplier")
	assert.Contains(t, msg, "negative rps")
	assert.Contains(t, msg, "zero size")
}

func TestValidateRejectsBadPlates(t *testing.T) {
	s := &Scenario{Suppliers: []SupplierSpec{{
		Name:    "north",
		Catalog: []Quote{{Material: 1, Plates: []pricing.Plate{{W: 0, H: 1, Cost: 1}}}},
	}}}

	assert.ErrorIs(t, s.Validate(), ErrInvalidScenario)
}

func TestLoadGlobRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", yamlScenario)
	writeFile(t, dir, "nested/deeper/b.toml", tomlScenario)
	writeFile(t, dir, "nested/c.json", jsonScenario)
	writeFile(t, dir, "nested/README.md", "# not a scenario")

	scenarios, err := LoadGlob(filepath.Join(dir, "**", "*"))
	require.NoError(t, err)

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	assert.ElementsMatch(t, []string{"yaml-run", "toml-run", "json-run"}, names)

	_, err = LoadGlob(filepath.Join(dir, "*.xml"))
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	original, err := Parse([]byte(yamlScenario), FormatYAML)
	require.NoError(t, err)

	for _, format := range []Format{FormatYAML, FormatTOML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Marshal(original, format)
			require.NoError(t, err)

			decoded, err := Parse(data, format)
			require.NoError(t, err)
			assert.Equal(t, original.Name, decoded.Name)
			assert.Equal(t, original.Suppliers, decoded.Suppliers)
			assert.Equal(t, original.StallWarning, decoded.StallWarning)
		})
	}
}

func TestBuildRunsScenario(t *testing.T) {
	s, err := Parse([]byte(yamlScenario), FormatYAML)
	require.NoError(t, err)

	coordinator := workshop.NewCoordinator(solver.Cheapest{}, nil)
	participants, err := Build(s, coordinator, Defaults{DemandBurst: 1}, nil)
	require.NoError(t, err)
	require.Len(t, participants.Suppliers, 2)
	require.Len(t, participants.Customers, 1)

	require.NoError(t, coordinator.Start(s.Workers))
	require.NoError(t, coordinator.Stop())
	participants.Wait()

	assert.Equal(t, s.TotalOrders(), participants.Delivered())
	for _, o := range participants.Customers[0].Results() {
		assert.InDelta(t, 7, o.Total(), 1e-9)
	}

	_, err = Build(s, coordinator, Defaults{}, nil)
	assert.ErrorIs(t, err, workshop.ErrAlreadyStarted)
}
