package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/civicsignal/arbiter/util"

	cli "github.com/urfave/cli/v2"
)

var checkCmd = &cli.Command{
	Name:      "check",
	Usage:     "submit a report to a running moderation service and print the decision",
	ArgsUsage: "<text>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Usage:   "base URL of the moderation service",
			Value:   "http://localhost:8700",
			EnvVars: []string{"ARBITER_HOST"},
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "path to an image or video file to attach",
		},
	},
	Action: func(cctx *cli.Context) error {
		text := cctx.Args().First()
		if text == "" {
			return fmt.Errorf("expected report text as argument")
		}

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		if err := mw.WriteField("text", text); err != nil {
			return err
		}
		if fp := cctx.String("file"); fp != "" {
			f, err := os.Open(fp)
			if err != nil {
				return err
			}
			defer f.Close()
			part, err := mw.CreateFormFile("file", filepath.Base(fp))
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, f); err != nil {
				return err
			}
		}
		if err := mw.Close(); err != nil {
			return err
		}

		url := cctx.String("host") + "/moderate"
		req, err := http.NewRequestWithContext(cctx.Context, "POST", url, &body)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())

		client := util.RobustHTTPClient()
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		respBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("moderation request failed: %s: %s", resp.Status, string(respBytes))
		}

		var out bytes.Buffer
		if err := json.Indent(&out, respBytes, "", "  "); err != nil {
			return err
		}
		fmt.Println(out.String())
		return nil
	},
}
