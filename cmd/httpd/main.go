// Command httpd serves the browser build of the shell. The page needs
// cross-origin isolation for the core's shared memory, so every response
// carries the embedder, opener and resource policy headers.
package main

import (
	"flag"
	"log"
	"net/http"
	"strings"
)

var isolationHeaders = map[string]string{
	"Cross-Origin-Embedder-Policy": "require-corp",
	"Cross-Origin-Opener-Policy":   "same-origin",
	"Cross-Origin-Resource-Policy": "same-origin",
}

type handler struct {
	fileHandler http.Handler
}

func newHandler(dir string) *handler {
	return &handler{
		fileHandler: http.FileServer(http.Dir(dir)),
	}
}

func (hnd *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("%s %s", r.Method, r.RequestURI)

	for k, v := range isolationHeaders {
		w.Header().Set(k, v)
	}
	if strings.HasSuffix(r.URL.Path, ".wasm") {
		w.Header().Set("Content-Type", "application/wasm")
	}
	hnd.fileHandler.ServeHTTP(w, r)
}

func main() {
	addr := flag.String("addr", ":8080", "address to listen on")
	dir := flag.String("dir", "www", "directory to serve")
	flag.Parse()

	log.Printf("serving %s on %s", *dir, *addr)
	if err := http.ListenAndServe(*addr, newHandler(*dir)); err != nil {
		log.Fatalln(err.Error())
	}
}
