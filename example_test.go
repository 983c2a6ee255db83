package invoicer_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/porticus-lab/invoicer"
)

func Example() {
	// Create a converter (reuses the browser across invoices).
	c, err := invoicer.NewConverter(invoicer.WithNoSandbox())
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	inv := &invoicer.Invoice{
		Number: "00014",
		Issuer: invoicer.Party{Name: "INVOICER X"},
		Client: invoicer.Party{Name: "Random Inc."},
		Issued: time.Now(),
		Items: []invoicer.LineItem{
			{ID: 1, Description: "Hosting\nMarch 2024", Units: 1, Price: 4900, VAT: 0.19},
		},
	}

	res, err := c.Export(context.Background(), inv)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Generated %s: %d pages\n", res.Filename(), res.PageCount())
}

func Example_paginate() {
	c, err := invoicer.NewConverter(
		invoicer.WithTimeout(60*time.Second),
		invoicer.WithNoSandbox(),
		invoicer.WithTheme(invoicer.ThemeDark),
		invoicer.WithFormatter(invoicer.Formatter{
			Locale:   language.German,
			Currency: currency.EUR,
		}),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	inv := &invoicer.Invoice{Number: "00015"}
	for i := 1; i <= 80; i++ {
		inv.Items = append(inv.Items, invoicer.LineItem{
			ID: int64(i), Description: fmt.Sprintf("Item %d", i), Units: 1, Price: 1000, VAT: 0.19,
		})
	}

	doc, err := c.Paginate(context.Background(), inv)
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range doc.Pages {
		fmt.Printf("page %d: items %d..%d\n", p.Index+1, p.Offset+1, p.Offset+p.Count)
	}
}

func ExampleResult_WriteToFile() {
	inv := &invoicer.Invoice{Number: "00016"}
	res, err := invoicer.Export(context.Background(), inv, invoicer.WithNoSandbox())
	if err != nil {
		log.Fatal(err)
	}
	if err := res.WriteToFile(res.Filename(), 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Fprintln(os.Stderr, "saved", res.Filename())
}
