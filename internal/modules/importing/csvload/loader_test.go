package csvload

import (
	"errors"
	"reflect"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestLoadStripsOrdinalColumn(t *testing.T) {
	tbl, _, err := LoadString("Lp.;Nazwa;Kolor\n1;telefon;czarny\n2;portfel\n")
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	if want := []string{"Nazwa", "Kolor"}; !reflect.DeepEqual(tbl.Header, want) {
		t.Fatalf("header: want=%v got=%v", want, tbl.Header)
	}
	want := [][]string{{"telefon", "czarny"}, {"portfel", ""}}
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Fatalf("rows: want=%v got=%v", want, tbl.Rows)
	}
	if err := tbl.Validate(); err != nil {
		t.Fatalf("not rectangular: %v", err)
	}
}

func TestLoadOrdinalIsCaseInsensitiveAndTrimmed(t *testing.T) {
	tbl, _, err := LoadString("  LP ;Nazwa\n1;klucze\n")
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	if !reflect.DeepEqual(tbl.Header, []string{"Nazwa"}) {
		t.Fatalf("header=%v", tbl.Header)
	}
	if !reflect.DeepEqual(tbl.Rows, [][]string{{"klucze"}}) {
		t.Fatalf("rows=%v", tbl.Rows)
	}
}

func TestLoadSkipsPreambleLine(t *testing.T) {
	in := "Wykaz rzeczy znalezionych\nNazwa;Kolor\ntelefon;czarny\n"
	tbl, name, err := LoadString(in)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if name != "skip_preamble" {
		t.Fatalf("strategy=%s", name)
	}
	if !reflect.DeepEqual(tbl.Header, []string{"Nazwa", "Kolor"}) {
		t.Fatalf("header=%v", tbl.Header)
	}
	if !reflect.DeepEqual(tbl.Rows, [][]string{{"telefon", "czarny"}}) {
		t.Fatalf("rows=%v", tbl.Rows)
	}
}

func TestLoadKeepsDelimitedHeaderWithUnnamedColumns(t *testing.T) {
	tbl, name, err := LoadString("Nazwa;;\ntelefon;czarny;Gdańsk\nportfel;brązowy;Kraków\n")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if name != "header" {
		t.Fatalf("strategy=%s", name)
	}
	if !reflect.DeepEqual(tbl.Header, []string{"Nazwa", "col1", "col2"}) {
		t.Fatalf("header=%v", tbl.Header)
	}
	want := [][]string{{"telefon", "czarny", "Gdańsk"}, {"portfel", "brązowy", "Kraków"}}
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Fatalf("rows=%v", tbl.Rows)
	}
}

func TestLoadFallsBackToMatrix(t *testing.T) {
	tbl, name, err := LoadString("Wykaz\ntelefon;czarny;;\n")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if name != "matrix" {
		t.Fatalf("strategy=%s", name)
	}
	if !reflect.DeepEqual(tbl.Header, []string{"col0", "col1", "col2", "col3"}) {
		t.Fatalf("header=%v", tbl.Header)
	}
	if !reflect.DeepEqual(tbl.Rows, [][]string{{"telefon", "czarny", "", ""}}) {
		t.Fatalf("rows=%v", tbl.Rows)
	}
}

func TestLoadNoRecords(t *testing.T) {
	for _, in := range []string{"", "\n\n", "Nazwa;Kolor\n", ";;\n;;\n"} {
		if _, _, err := LoadString(in); !errors.Is(err, ErrNoRecords) {
			t.Fatalf("%q: want ErrNoRecords got %v", in, err)
		}
	}
}

func TestLoadRaggedRowsAreRectangular(t *testing.T) {
	tbl, _, err := LoadString("Nazwa;Kolor;Miejsce\ntelefon\nportfel;brązowy;dworzec;nadmiar\n")
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	for i, r := range tbl.Rows {
		if len(r) != len(tbl.Header) {
			t.Fatalf("row %d len=%d header=%d", i, len(r), len(tbl.Header))
		}
	}
	if tbl.Rows[1][2] != "dworzec" {
		t.Fatalf("row 1=%v", tbl.Rows[1])
	}
}

func TestLoadQuotedDelimiterAndBlankLines(t *testing.T) {
	tbl, _, err := LoadString("Nazwa;Opis\n\ntelefon;\"etui; czarne\"\n\n")
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	if !reflect.DeepEqual(tbl.Rows, [][]string{{"telefon", "etui; czarne"}}) {
		t.Fatalf("rows=%v", tbl.Rows)
	}
}

func TestLoadDuplicateHeadersMadeUnique(t *testing.T) {
	tbl, _, err := LoadString("Kolor;Kolor;;Kolor\na;b;c;d\n")
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	want := []string{"Kolor", "Kolor_2", "col2", "Kolor_3"}
	if !reflect.DeepEqual(tbl.Header, want) {
		t.Fatalf("header: want=%v got=%v", want, tbl.Header)
	}
}

func TestLoadWindows1250MatchesUTF8(t *testing.T) {
	text := "Nazwa;Miejsce\nłódka;Łódź, ul. Żółta\n"
	encoded, err := charmap.Windows1250.NewEncoder().String(text)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	fromLegacy, _, err := Load([]byte(encoded))
	if err != nil {
		t.Fatalf("Load cp1250: %v", err)
	}
	fromUTF8, _, err := Load([]byte(text))
	if err != nil {
		t.Fatalf("Load utf8: %v", err)
	}
	if !reflect.DeepEqual(fromLegacy, fromUTF8) {
		t.Fatalf("cp1250=%v utf8=%v", fromLegacy, fromUTF8)
	}
}

func TestLoadStripsBOM(t *testing.T) {
	tbl, _, err := Load(append([]byte{0xEF, 0xBB, 0xBF}, []byte("Lp;Nazwa\n1;parasol\n")...))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(tbl.Header, []string{"Nazwa"}) {
		t.Fatalf("header=%v", tbl.Header)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	tbl, _, err := LoadString("Nazwa;Opis\ntelefon;\"etui; czarne\"\n")
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	text, err := Render(tbl)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	again, _, err := LoadString(text)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(tbl, again) {
		t.Fatalf("round trip: %v vs %v", tbl, again)
	}
}
