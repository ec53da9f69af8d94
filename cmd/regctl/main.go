package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AbbyGrylls/impetus9-backend/pkg/impetus"
)

func main() {
	var (
		server  = flag.String("server", "http://localhost:8080", "base URL of the registration server")
		event   = flag.String("event", "", "event name to export (required)")
		coords  = flag.String("coords", "", "event identifier the passkey is configured for (defaults to -event)")
		name    = flag.String("name", "", "coordinator name recorded on a first download")
		passkey = flag.String("passkey", "", "master or coordinator passkey (required)")
		outDir  = flag.String("out", ".", "directory to write the exported files into")
		watch   = flag.Bool("watch", false, "instead of downloading, watch the event's claim notifications")
	)
	flag.Parse()

	if *event == "" || *passkey == "" {
		fmt.Fprintln(os.Stderr, "regctl: -event and -passkey are required")
		flag.Usage()
		os.Exit(2)
	}
	if *coords == "" {
		*coords = *event
	}

	client := impetus.NewClient(*server)

	if *watch {
		watchEvent(client, *event, *passkey)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := client.Download(ctx, impetus.DownloadRequest{
		EventName:       *event,
		CoordsValue:     *coords,
		CoordinatorName: *name,
		Passkey:         *passkey,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "regctl: download failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(result.Message)
	if !result.HasRegistrations {
		return
	}

	xlsxPath := filepath.Join(*outDir, *event+"-registrations.xlsx")
	if err := os.WriteFile(xlsxPath, result.Excel, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "regctl: failed to write %s: %v\n", xlsxPath, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", xlsxPath)

	if result.FullAccess {
		vcfPath := filepath.Join(*outDir, *event+"-contacts.vcf")
		if err := os.WriteFile(vcfPath, []byte(result.VCF), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "regctl: failed to write %s: %v\n", vcfPath, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", vcfPath)
	}
}

func watchEvent(client *impetus.Client, event, passkey string) {
	fmt.Printf("watching %s (ctrl-c to stop)\n", event)
	err := client.WatchLock(context.Background(), event, passkey, func(msg impetus.LockMessage) {
		switch msg.Type {
		case "lock_state":
			if msg.Claimed {
				fmt.Printf("already claimed by %s\n", msg.DownloaderName)
			} else {
				fmt.Println("not claimed yet")
			}
		case "claimed":
			fmt.Printf("claimed by %s\n", msg.DownloaderName)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "regctl: watch failed: %v\n", err)
		os.Exit(1)
	}
}
