package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	serverURL = flag.String("server", "http://localhost:8080", "Base URL of the document QA server")
	stream    = flag.Bool("stream", true, "Stream answers instead of waiting for the full response")
	timeout   = flag.Duration("timeout", 2*time.Minute, "Per-request timeout for non-streaming calls")
)

type queryRequest struct {
	Question string `json:"question"`
}

type queryResponse struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	Metadata   struct {
		RetrievalTimeMs  int64 `json:"retrieval_time_ms"`
		GenerationTimeMs int64 `json:"generation_time_ms"`
		ChunksUsed       int   `json:"chunks_used"`
	} `json:"metadata"`
}

type statsResponse struct {
	TotalPoints    int    `json:"total_points"`
	CollectionName string `json:"collection_name"`
	IsReady        bool   `json:"is_ready"`
}

type ingestResponse struct {
	Source     string `json:"source"`
	ChunkCount int    `json:"chunk_count"`
}

func main() {
	flag.Parse()

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Println(boldGreen("Document QA chat"))
	fmt.Printf("Server: %s\n", boldCyan(*serverURL))
	fmt.Println("Ask a question, or use /ingest <file>, /stats, /clear. Type 'exit' to quit.")
	fmt.Println()

	client := &http.Client{Timeout: *timeout}
	ctx := context.Background()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") {
			break
		}

		switch {
		case strings.HasPrefix(line, "/ingest "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/ingest "))
			if err := ingestFile(ctx, client, path); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		case line == "/stats":
			if err := showStats(ctx, client, dim); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		case line == "/clear":
			if err := clearCollection(ctx, client); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		default:
			fmt.Print(boldCyan("Assistant: "))
			var err error
			if *stream {
				err = askStream(ctx, client, line)
			} else {
				err = ask(ctx, client, line, dim)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
			}
			fmt.Println()
		}
	}
}

func ask(ctx context.Context, client *http.Client, question string, dim func(...interface{}) string) error {
	body, _ := json.Marshal(queryRequest{Question: question})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *serverURL+"/v1/query", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return httpError(resp)
	}

	var out queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	fmt.Println(out.Answer)
	fmt.Println(dim(fmt.Sprintf("confidence=%.2f chunks=%d retrieval=%dms generation=%dms",
		out.Confidence, out.Metadata.ChunksUsed, out.Metadata.RetrievalTimeMs, out.Metadata.GenerationTimeMs)))
	return nil
}

func askStream(ctx context.Context, client *http.Client, question string) error {
	body, _ := json.Marshal(queryRequest{Question: question})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *serverURL+"/v1/query/stream", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	// Streaming has no sensible per-request deadline.
	streamClient := &http.Client{}
	resp, err := streamClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return httpError(resp)
	}

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return nil
			}
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")

		var payload struct {
			Chunk string `json:"chunk"`
			Done  bool   `json:"done"`
			Error string `json:"error"`
		}
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			continue
		}
		if payload.Error != "" {
			return fmt.Errorf("server: %s", payload.Error)
		}
		if payload.Done {
			fmt.Println()
			return nil
		}
		fmt.Print(payload.Chunk)
	}
}

func ingestFile(ctx context.Context, client *http.Client, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *serverURL+"/v1/documents", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return httpError(resp)
	}

	var out ingestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	fmt.Printf("Ingested %s (%d chunks)\n", out.Source, out.ChunkCount)
	return nil
}

func showStats(ctx context.Context, client *http.Client, dim func(...interface{}) string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, *serverURL+"/v1/stats", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return httpError(resp)
	}

	var out statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	fmt.Println(dim(fmt.Sprintf("collection=%s points=%d ready=%v",
		out.CollectionName, out.TotalPoints, out.IsReady)))
	return nil
}

func clearCollection(ctx context.Context, client *http.Client) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *serverURL+"/v1/clear", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return httpError(resp)
	}
	fmt.Println("Cleared.")
	return nil
}

func httpError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("%s: %s", resp.Status, msg)
}
