package loader

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// Workbook with two sheets; "Data" (sheetId 2) holds a semicolon-locale
// measurement table with a header and ten rows.
const xlsxFixtureBase64 = `
UEsDBBQAAAAIAMEwN1vYAxPv/wAAALYCAAATABwAW0NvbnRlbnRfVHlwZXNdLnhtbFVUCQADyjjSaMo40mh1eAsAAQQAAAAABAAAAAC1ks1OwzAQhO95CsvX
Kt60B4RQkh74OQKH8gDG3iRW/CfbLeHtcVIEEqIIpHJaWTOz32jlejsZTQ4YonK2oWtWUYJWOKls39Cn3V15SbdtUe9ePUaSvTY2dEjJXwFEMaDhkTmPNiud
C4an/Aw9eC5G3iNsquoChLMJbSrTvIO2BSH1DXZ8rxO5nbJyRAfUkZLro3fGNZR7r5XgKetwsPILqHyHsJxcPHFQPq6ygcIpyCyeZnxGH/JFgpJIHnlI99xk
I0waXlwYn50b2c97vunquk4JlE7sTY6w6ANyGQfEZDRbJjNc2dWvKiz+CMtYn7nLx/6/V9n8d5Ualm/YFm9QSwMECgAAAAAAxDA3WwAAAAAAAAAAAAAAAAMA
HAB4bC9VVAkAA9A40mjyONJodXgLAAEEAAAAAAQAAAAAUEsDBBQAAAAIAMQwN1tM2kS6xQAAAEkBAAAPABwAeGwvd29ya2Jvb2sueG1sVVQJAAPQONJo0DjS
aHV4CwABBAAAAAAEAAAAAI1Qu27DMAzc/RUC90aOhyIwZGcJAnhvP0CxaVuIRRqk+vj8qjEMZOjQ7Y7k3ZF05++4mE8UDUwNHA8lGKSeh0BTA+9v15cTnNvC
fbHcb8x3k8dJG5hTWmtrtZ8xej3wipQ7I0v0KVOZrK6CftAZMcXFVmX5aqMPBJtDLf/x4HEMPV64/4hIaTMRXHzKy+ocVoW2MMY9QvQX7sSQj9hANxELgnnU
uiHfB0bqkIF0wxHsH5KLT/5JUD0Jqk3g7J7n7P6WtvgBUEsDBAoAAAAAANIwN1sAAAAAAAAAAAAAAAAOABwAeGwvd29ya3NoZWV0cy9VVAkAA+s40mjyONJo
dXgLAAEEAAAAAAQAAAAAUEsDBBQAAAAIANIwN1u3fFZsqwIAAIASAAAYABwAeGwvd29ya3NoZWV0cy9zaGVldDIueG1sVVQJAAPrONJo6zjSaHV4CwABBAAA
AAAEAAAAAJ3YT26bQBiH4X1OgVilkguD/wEVJkoMzibKJukBJngMqGYGDeMkvVXP0JN1nEhVQ/r7QCxx/BDsV9/gIbl6bY7Os9BdreTGDTzmOkIWal/LcuN+
f9x9jdyr9CJ5UfpHVwlhHPt+2W3cypj2m+93RSUa3nmqFdL+5aB0w4091KXftVrw/Rtqjv6csbXf8Fq66YXjJG8vZ9zw85E91urF0fb/u+/H9pXifHwduI7Z
uLU81lI8GO2mSd2liUlvtTq1iW/SxD+/4Bcf3Q1yWyULIY3mxn5e57L0777gs2zRWR5F0zqXv3/tCJwh/FAoLbDLkbtTBT+K+1PzJDTmO/jJuRGl0j8xvUX0
Xpn/XHDi22gf8837+ebgjNdEOmTYbEWkQipkRCKEAjYjWA6Zxxgpd0jyY1txogxyh1p3ZlSaRT/NYkIaZNhsTaRBKgyINAgFAZkGMi8YSIPkUBrkOlEouR/V
Ztlvs5zQBhk7NtTcILaOiTgIxdSI5vAKvXigDZJPwlBpEDNVrceVWfXLrMApb4gyyLBZSIRBKiS+4gyhgFw8c8g8tqLLIDk0Ncgd1EmbalSbdb/NekIbZOyK
Rk0NYuGSiINQPIuINvAKvTii2yA5MDWIHerDyDJhv0w4oQwytgzxdW0RCxdEGYTs2MyJNJB5bE6nQXJobJDr6teRbaJ+m2jCvQYZu8oQ39cWMSpohlBETg28
Qi8amBokS940VBrkOvFsNxzj4sT9OPGEwUHG3m6oJQ2xkPhplyEUU7e2HF6hF4d0HCQHljTERF1WI9ME7NPWlE2YHIgW1OfeQhZTvwagom/qOXaDGxxIh1Y2
CGU9dnqCz08P0I6Wmh+I7J2H2uZAFxJrYgaVvfcQ+6McO4/R29cdpENLHIRmYIVL/H+e9yT+34dJ6cUfUEsDBBQAAAAIAMcwN1sqMey0swAAAPgAAAAYABwA
eGwvd29ya3NoZWV0cy9zaGVldDEueG1sVVQJAAPWONJo1jjSaHV4CwABBAAAAAAEAAAAAE2P3WrDMAxG7/MURverkl6MUhyXwegLrHsA46iNqf+QxbLHr5OO
0cvzSfoO0qffGNQPcfU5jTDselCUXJ58uo3wfTm/HeBkOr1kvteZSFTbT3WEWaQcEaubKdq6y4VSm1wzRysN+Ya1MNlpO4oB933/jtH6BKZTSm/xpxW7UmPO
i+Lmhye3xK38MYCSEXwKPtGXMBjtq9FiSrCO5hwmYo1iNK4xur82bHWbBl88Gv+fMN0DUEsDBAoAAAAAAMYwN1sAAAAAAAAAAAAAAAAJABwAeGwvX3JlbHMv
VVQJAAPTONJo8jjSaHV4CwABBAAAAAAEAAAAAFBLAwQUAAAACADGMDdbCmPblLYAAACtAQAAGgAcAHhsL19yZWxzL3dvcmtib29rLnhtbC5yZWxzVVQJAAPT
ONJo0zjSaHV4CwABBAAAAAAEAAAAAL2QSwrCMBBA9z1FmL2dtgsRadqNCN1KPUBIpx/aJiGJv9sbBMWCgitXw/zePCYvr/PEzmTdoBWHNE6AkZK6GVTH4Vjv
Vxsoiyg/0CR8GHH9YBwLO8px6L03W0Qne5qFi7UhFTqttrPwIbUdGiFH0RFmSbJG+86AImJsgWVVw8FWTQqsvhn6Ba/bdpC00/I0k/IfruBF29H1RD5Ahe3I
c3iVHD5CGgcq4Fef7M8+2dMnx8XXi+gOUEsDBAoAAAAAAMMwN1sAAAAAAAAAAAAAAAAGABwAX3JlbHMvVVQJAAPNONJo8jjSaHV4CwABBAAAAAAEAAAAAFBL
AwQUAAAACADDMDdbDxvLDKoAAAAcAQAACwAcAF9yZWxzLy5yZWxzVVQJAAPNONJozTjSaHV4CwABBAAAAAAEAAAAAI3PsQ6CMBAG4J2naG6XgoMxxsJiTFgN
PkAtRyHQXtNWxbe3oxgHx8v9913+Y72YmT3Qh5GsgDIvgKFV1I1WC7i2580e6io7XnCWMUXCMLrA0o0NAoYY3YHzoAY0MuTk0KZNT97ImEavuZNqkhr5tih2
3H8aUGWMrVjWdAJ805XA2pfDf3jq+1HhidTdoI0/vnwlkiy9xihgmfmT/HQjmvKEAk8d+apklb0BUEsBAh4DFAAAAAgAwTA3W9gDE+//AAAAtgIAABMAGAAA
AAAAAQAAAKSBAAAAAFtDb250ZW50X1R5cGVzXS54bWxVVAUAA8o40mh1eAsAAQQAAAAABAAAAABQSwECHgMKAAAAAADEMDdbAAAAAAAAAAAAAAAAAwAYAAAA
AAAAABAA7UFMAQAAeGwvVVQFAAPQONJodXgLAAEEAAAAAAQAAAAAUEsBAh4DFAAAAAgAxDA3W0zaRLrFAAAASQEAAA8AGAAAAAAAAQAAAKSBiQEAAHhsL3dv
cmtib29rLnhtbFVUBQAD0DjSaHV4CwABBAAAAAAEAAAAAFBLAQIeAwoAAAAAANIwN1sAAAAAAAAAAAAAAAAOABgAAAAAAAAAEADtQZcCAAB4bC93b3Jrc2hl
ZXRzL1VUBQAD6zjSaHV4CwABBAAAAAAEAAAAAFBLAQIeAxQAAAAIANIwN1u3fFZsqwIAAIASAAAYABgAAAAAAAEAAACkgd8CAAB4bC93b3Jrc2hlZXRzL3No
ZWV0Mi54bWxVVAUAA+s40mh1eAsAAQQAAAAABAAAAABQSwECHgMUAAAACADHMDdbKjHstLMAAAD4AAAAGAAYAAAAAAABAAAApIHcBQAAeGwvd29ya3NoZWV0
cy9zaGVldDEueG1sVVQFAAPWONJodXgLAAEEAAAAAAQAAAAAUEsBAh4DCgAAAAAAxjA3WwAAAAAAAAAAAAAAAAkAGAAAAAAAAAAQAO1B4QYAAHhsL19yZWxz
L1VUBQAD0zjSaHV4CwABBAAAAAAEAAAAAFBLAQIeAxQAAAAIAMYwN1sKY9uUtgAAAK0BAAAaABgAAAAAAAEAAACkgSQHAAB4bC9fcmVscy93b3JrYm9vay54
bWwucmVsc1VUBQAD0zjSaHV4CwABBAAAAAAEAAAAAFBLAQIeAwoAAAAAAMMwN1sAAAAAAAAAAAAAAAAGABgAAAAAAAAAEADtQS4IAABfcmVscy9VVAUAA804
0mh1eAsAAQQAAAAABAAAAABQSwECHgMUAAAACADDMDdbDxvLDKoAAAAcAQAACwAYAAAAAAABAAAApIFuCAAAX3JlbHMvLnJlbHNVVAUAA8040mh1eAsAAQQA
AAAABAAAAABQSwUGAAAAAAoACgBTAwAAXQkAAAAA
`

func writeXLSXFixture(t *testing.T) string {
	t.Helper()
	raw := strings.ReplaceAll(strings.TrimSpace(xlsxFixtureBase64), "\n", "")
	data, err := base64.StdEncoding.DecodeString(raw)
	require.NoError(t, err)
	p := filepath.Join(t.TempDir(), "measurements.xlsx")
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestLoadXLSXBySheetNameAndIndex(t *testing.T) {
	p := writeXLSXFixture(t)

	byName, err := Load(p, Options{SheetName: "data"})
	require.NoError(t, err)
	byIndex, err := Load(p, Options{SheetIndex: 2})
	require.NoError(t, err)

	for _, tb := range []*table.Table{byName, byIndex} {
		assert.Equal(t, 10, tb.Rows())
		assert.Equal(t, 7, tb.Width())
		assert.Equal(t, "Group", tb.Names()[0])
		assert.Equal(t, "Concentration (g/L)", tb.Names()[1])
		assert.Equal(t, []string{"A", "0,5", "70", "10,0", "1.000,0", "alpha", "first"}, tb.Head(1)[0])
		temp, ok := tb.Column("Temp (°F)")
		require.True(t, ok)
		assert.Equal(t, table.KindNumeric, temp.Kind)
	}
}

func TestLoadXLSXUnknownSheet(t *testing.T) {
	_, err := Load(writeXLSXFixture(t), Options{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: ")
}

func TestRelPartPath(t *testing.T) {
	cases := map[string]string{
		"/xl/worksheets/sheet1.xml": "xl/worksheets/sheet1.xml",
		"xl/worksheets/sheet1.xml":  "xl/worksheets/sheet1.xml",
		"/worksheets/sheet1.xml":    "xl/worksheets/sheet1.xml",
		"worksheets/sheet1.xml":     "xl/worksheets/sheet1.xml",
		"styles.xml":                "xl/styles.xml",
	}
	for in, want := range cases {
		assert.Equal(t, want, relPartPath(in), in)
	}
}

func TestColumnIndex(t *testing.T) {
	assert.Equal(t, 0, columnIndex("A1"))
	assert.Equal(t, 2, columnIndex("C12"))
	assert.Equal(t, 26, columnIndex("AA3"))
}
