package services

import (
	"testing"
)

func TestParseQRData(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		want    QRData
	}{
		{
			name:  "valid payload",
			input: `{"product_name": "Pixel 9", "warranty_end": "2027-06-30", "imei": "356789012345678"}`,
			want:  QRData{ProductName: "Pixel 9", WarrantyEnd: "2027-06-30", IMEI: "356789012345678"},
		},
		{
			name:  "whitespace trimmed",
			input: `{"product_name": " Pixel 9 ", "warranty_end": " 2027-06-30", "imei": "356789012345678 "}`,
			want:  QRData{ProductName: "Pixel 9", WarrantyEnd: "2027-06-30", IMEI: "356789012345678"},
		},
		{name: "empty string", input: "", wantErr: true},
		{name: "not json", input: "product=Pixel", wantErr: true},
		{name: "missing product_name", input: `{"warranty_end": "2027-06-30", "imei": "356789012345678"}`, wantErr: true},
		{name: "missing warranty_end", input: `{"product_name": "Pixel 9", "imei": "356789012345678"}`, wantErr: true},
		{name: "missing imei", input: `{"product_name": "Pixel 9", "warranty_end": "2027-06-30"}`, wantErr: true},
		{name: "blank fields", input: `{"product_name": " ", "warranty_end": "2027-06-30", "imei": "x"}`, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseQRData(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseQRData(%q) expected error, got %+v", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseQRData(%q) failed: %v", tc.input, err)
			}
			if *got != tc.want {
				t.Errorf("parseQRData(%q) = %+v, want %+v", tc.input, *got, tc.want)
			}
		})
	}
}

func TestSummarizeReceiptText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "empty", text: "", want: ""},
		{name: "single line", text: "ACME Electronics", want: "ACME Electronics"},
		{
			name: "keeps first three lines",
			text: "ACME Electronics\n123 Main St\nGalaxy S24 $899.00\nVAT 19%\nThank you",
			want: "ACME Electronics / 123 Main St / Galaxy S24 $899.00",
		},
		{
			name: "skips blank lines",
			text: "\n\n  \nACME Electronics\n\nGalaxy S24",
			want: "ACME Electronics / Galaxy S24",
		},
		{name: "only whitespace", text: " \n\t\n ", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := summarizeReceiptText(tc.text); got != tc.want {
				t.Errorf("summarizeReceiptText(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}
