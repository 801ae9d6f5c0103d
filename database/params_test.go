package database

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type lineItem struct {
	SKU      string
	Quantity int
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"id":      "@id",
		"@id":     "@id",
		"  name ": "@name",
	}
	for in, want := range cases {
		got, err := NormalizeName(in)
		if err != nil {
			t.Fatalf("NormalizeName(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}

	for _, in := range []string{"", "   ", "@"} {
		if _, err := NormalizeName(in); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("NormalizeName(%q): expected ErrInvalidParameter, got %v", in, err)
		}
	}
}

func TestBuildParameterBag(t *testing.T) {
	t.Run("prefixes names and appends outputs", func(t *testing.T) {
		bag, err := BuildParameterBag([]Param{P("id", Int(5))})
		if err != nil {
			t.Fatalf("BuildParameterBag failed: %v", err)
		}

		params := bag.Params()
		if len(params) != 3 {
			t.Fatalf("expected 3 parameters, got %d", len(params))
		}
		if params[0].Name != "@id" || params[0].Value.Interface() != int64(5) || params[0].Direction != Input {
			t.Errorf("unexpected first parameter: %+v", params[0])
		}
		if params[1].Name != MessageOutput || params[1].Direction != Output || params[1].Value.Kind() != KindString || params[1].Size != MessageOutputSize {
			t.Errorf("unexpected message output: %+v", params[1])
		}
		if params[2].Name != ResultOutput || params[2].Direction != Output || params[2].Value.Kind() != KindInt {
			t.Errorf("unexpected result output: %+v", params[2])
		}
	})

	t.Run("keeps an existing marker", func(t *testing.T) {
		bag, err := BuildParameterBag([]Param{P("@id", Int(5))})
		if err != nil {
			t.Fatalf("BuildParameterBag failed: %v", err)
		}
		if _, ok := bag.Lookup("@@id"); ok {
			t.Error("marker was doubled")
		}
		if _, ok := bag.Lookup("id"); !ok {
			t.Error("expected @id to be bound")
		}
	})

	t.Run("binds null FileContent as empty binary", func(t *testing.T) {
		bag, err := BuildParameterBag([]Param{P("FileContent", Null())})
		if err != nil {
			t.Fatalf("BuildParameterBag failed: %v", err)
		}

		p, ok := bag.Lookup("@FileContent")
		if !ok {
			t.Fatal("expected @FileContent to be bound")
		}
		if p.Value.Kind() != KindBinary {
			t.Errorf("expected binary kind, got %s", p.Value.Kind())
		}
		if b := p.Value.Bytes(); b == nil || len(b) != 0 {
			t.Errorf("expected empty non-nil bytes, got %v", b)
		}
	})

	t.Run("matches FileContent case-insensitively with marker", func(t *testing.T) {
		payload := []byte{0x01, 0x02}
		bag, err := BuildParameterBag([]Param{
			P("@filecontent", Binary(payload)),
			P("FILECONTENT2", String("not a file")),
		})
		if err != nil {
			t.Fatalf("BuildParameterBag failed: %v", err)
		}

		p, _ := bag.Lookup("filecontent")
		if string(p.Value.Bytes()) != string(payload) {
			t.Errorf("expected payload to be kept, got %v", p.Value.Bytes())
		}
		other, _ := bag.Lookup("FILECONTENT2")
		if other.Value.Kind() != KindString {
			t.Errorf("expected similarly named parameter to keep its kind, got %s", other.Value.Kind())
		}
	})

	t.Run("coerces non-binary FileContent to empty binary", func(t *testing.T) {
		bag, err := BuildParameterBag([]Param{P("FileContent", String("abc"))})
		if err != nil {
			t.Fatalf("BuildParameterBag failed: %v", err)
		}
		p, _ := bag.Lookup("FileContent")
		if p.Value.Kind() != KindBinary || len(p.Value.Bytes()) != 0 {
			t.Errorf("expected empty binary, got %+v", p.Value)
		}
	})

	t.Run("registers table values with their type name", func(t *testing.T) {
		rows := []lineItem{{SKU: "A-1", Quantity: 2}}
		bag, err := BuildParameterBag([]Param{P("Items", Table("dbo.LineItemType", rows))})
		if err != nil {
			t.Fatalf("BuildParameterBag failed: %v", err)
		}
		p, _ := bag.Lookup("@Items")
		if p.Value.Kind() != KindTable || p.Value.TypeName() != "dbo.LineItemType" {
			t.Errorf("unexpected table parameter: %+v", p)
		}
	})

	t.Run("rejects table values without type name", func(t *testing.T) {
		_, err := BuildParameterBag([]Param{P("Items", Table("  ", []lineItem{}))})
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("expected ErrInvalidParameter, got %v", err)
		}
	})

	t.Run("rejects table values without rows", func(t *testing.T) {
		_, err := BuildParameterBag([]Param{P("Items", Table("dbo.LineItemType", nil))})
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("expected ErrInvalidParameter, got %v", err)
		}
	})

	t.Run("passes typed values through in order", func(t *testing.T) {
		when := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		bag, err := BuildInputBag([]Param{
			P("a", Bool(true)),
			P("b", Date(when)),
			P("c", Decimal(decimal.RequireFromString("12.50"))),
			P("d", Null()),
		})
		if err != nil {
			t.Fatalf("BuildInputBag failed: %v", err)
		}

		params := bag.Params()
		if len(params) != 4 {
			t.Fatalf("expected no output slots, got %d parameters", len(params))
		}
		want := []Kind{KindBool, KindDate, KindDecimal, KindNull}
		for i, k := range want {
			if params[i].Value.Kind() != k {
				t.Errorf("parameter %d: expected %s, got %s", i, k, params[i].Value.Kind())
			}
		}
		if !params[1].Value.Interface().(time.Time).Equal(when) {
			t.Errorf("date value changed")
		}
	})
}

func TestBag_Outputs(t *testing.T) {
	bag := NewBag()

	if _, ok := bag.OutputInt(ResultOutput); ok {
		t.Error("expected unset result output")
	}

	bag.SetOutput("result", int64(7))
	bag.SetOutput("@msg", []byte("done"))

	if v, ok := bag.OutputInt("@result"); !ok || v != 7 {
		t.Errorf("expected result 7, got %d (ok=%v)", v, ok)
	}
	if v, ok := bag.OutputString("msg"); !ok || v != "done" {
		t.Errorf("expected message done, got %q (ok=%v)", v, ok)
	}

	bag.SetOutput("@result", nil)
	if _, ok := bag.OutputInt("@result"); ok {
		t.Error("expected null result output to report not ok")
	}
}
