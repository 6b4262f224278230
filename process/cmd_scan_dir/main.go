// Command scan_dir runs the extraction pipeline over a directory of receipt
// photos, prints the parsed items with their category and optionally keeps
// watching the directory for new files.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"

	"bonscan/pkg/classify"
	"bonscan/pkg/receipt"
)

var verbose bool

func main() {
	dirFlag := flag.String("dir", "receipts", "directory to scan for receipt images")
	watch := flag.Bool("watch", false, "watch directory for new files")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	storePath := flag.String("store", "keywords.json", "keyword store JSON file")
	langs := flag.String("langs", "", "comma-separated OCR languages (default ron,eng)")
	interactive := flag.Bool("interactive", false, "prompt for a category when fuzzy matching is unsure")
	flag.BoolVar(&verbose, "verbose", false, "verbose per-file logging")
	flag.Parse()

	_ = godotenv.Load()

	var languages []string
	if *langs != "" {
		languages = strings.Split(*langs, ",")
	}
	pipeline := &receipt.Pipeline{
		Recognizer: receipt.NewTesseractRecognizer(languages...),
		Workers:    effectiveWorkers(*workers),
	}
	matcher := classify.NewMatcher(classify.NewFileStore(*storePath))
	if *interactive {
		matcher.Resolver = promptResolver(bufio.NewReader(os.Stdin))
	}

	files := listImageFiles(*dirFlag)
	log.Printf("Scanning %d files in %s (workers=%d)", len(files), *dirFlag, effectiveWorkers(*workers))
	runWorkerPool(*dirFlag, pipeline, matcher, files, effectiveWorkers(*workers))

	if *watch {
		if err := watchDirectory(*dirFlag, pipeline, matcher, effectiveWorkers(*workers)); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

// promptResolver asks on stdin which category an unplaced product belongs
// to. An empty answer leaves the product unresolved.
func promptResolver(in *bufio.Reader) classify.Resolver {
	return func(product string, categories []string) (string, error) {
		fmt.Printf("No confident category for %q. Known: %s\n", product, strings.Join(categories, ", "))
		fmt.Print("Category (empty to skip): ")
		line, err := in.ReadString('\n')
		if err != nil {
			return "", err
		}
		answer := strings.TrimSpace(line)
		if answer == "" {
			return "", fmt.Errorf("skipped")
		}
		return answer, nil
	}
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}

// runWorkerPool fans filenames out to workers. With extra channels (watch
// mode) the pool runs until the process exits.
func runWorkerPool(dir string, pipeline *receipt.Pipeline, matcher *classify.Matcher, initial []string, workers int, extraCh ...<-chan string) {
	fileCh := make(chan string, 1024)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				processFile(dir, name, pipeline, matcher)
			}
		}()
	}
	go func() {
		for _, f := range initial {
			fileCh <- f
		}
		for _, ch := range extraCh {
			go func(c <-chan string) {
				for n := range c {
					fileCh <- n
				}
			}(ch)
		}
		if len(extraCh) == 0 {
			close(fileCh)
		}
	}()
	if len(extraCh) == 0 {
		wg.Wait()
	}
}

func processFile(dir, name string, pipeline *receipt.Pipeline, matcher *classify.Matcher) {
	path := filepath.Join(dir, name)
	result, err := pipeline.ExtractFile(context.Background(), path)
	if err != nil {
		log.Printf("ERROR extract %s: %v", name, err)
		return
	}
	if len(result.Items) == 0 {
		logV("no items in %s", name)
		return
	}

	products := make([]classify.Product, 0, len(result.Items))
	for _, it := range result.Items {
		products = append(products, classify.Product{Name: it.Name, Price: it.Price})
	}
	decisions, err := matcher.ClassifyAll(products)
	if err != nil {
		log.Printf("ERROR classify %s: %v", name, err)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", name)
	for i, it := range result.Items {
		category := "?"
		if i < len(decisions) && decisions[i].Resolved {
			category = decisions[i].Category
		}
		fmt.Fprintf(&b, "  %-30s %6.2f x %g %-4s %-14s", it.Name, it.Price, it.Quantity, it.Unit, category)
		if it.Sale > 0 {
			fmt.Fprintf(&b, " sale %.0f%%", it.Sale*100)
		}
		b.WriteString("\n")
	}
	total := result.ItemsTotal()
	if result.Total != nil {
		total = *result.Total
	}
	fmt.Fprintf(&b, "  TOTAL %.2f\n", total)
	fmt.Print(b.String())
}

func watchDirectory(dir string, pipeline *receipt.Pipeline, matcher *classify.Matcher, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	fileCh := make(chan string, 256)
	go func() {
		// debounce map of pending files; a file is forwarded once it has
		// been quiet for 300ms so half-written images are not processed
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(fileCh)
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					name := filepath.Base(ev.Name)
					if !isSupportedExt(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond {
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(fileCh)
					return
				}
				log.Printf("watch error: %v", err)
			}
		}
	}()

	go runWorkerPool(dir, pipeline, matcher, nil, workers, fileCh)
	// block forever (Ctrl+C to exit)
	select {}
}
