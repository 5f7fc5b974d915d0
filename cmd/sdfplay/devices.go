package main

import (
	"bytes"
	"fmt"

	"github.com/gogpu/sdfplay/internal/gpu"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

func listDevices(ctx *cli.Context) error {
	if _, err := setup(ctx); err != nil {
		return err
	}
	fmt.Print(adapterTable(gpu.Adapters()))
	return nil
}

func adapterTable(adapters []gpu.AdapterInfo) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Backend", "Adapter", "Type", "Vendor", "Driver"})
	for _, a := range adapters {
		table.Append([]string{
			a.Backend.String(),
			a.Name,
			a.DeviceType.String(),
			a.Vendor,
			a.Driver,
		})
	}
	table.SetFooter([]string{"", "", "", "adapters", fmt.Sprint(len(adapters))})
	table.Render()
	return buf.String()
}
