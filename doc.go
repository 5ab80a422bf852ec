/*
The go-apptest package simulates HTTP requests against an application running in the same process.
Instead of building requests by hand and driving the application's dispatch pipeline, a test calls
Request or RequestJSON and reads the result through an ExtraResponse.

# Basics

An application is anything implementing Application:

	Process(req *Request, resp Response) (Response, error)

The request and a fresh response are passed in explicitly, so nothing is registered in shared state
before dispatch. Plain http.Handler values (a chi router, an http.ServeMux) run through HandlerApp;
closures run through ApplicationFunc.

For every call the Client:

  - parses the url into path and query string (host defaults to localhost)

  - picks the content type: the Content-Type header if given, else application/x-www-form-urlencoded

  - serializes the body: strings verbatim, mappings as JSON or as a form depending on the content type,
    anything else as an empty payload

  - builds the synthetic environment (REQUEST_METHOD, REQUEST_URI, QUERY_STRING, SERVER_NAME,
    CONTENT_TYPE, CONTENT_LENGTH and one HTTP_<Name> entry per header)

  - derives the request from that environment: headers, cookies, query, body and uploaded files

  - runs the application and wraps its response

# Response

ExtraResponse forwards every Response method and adds:

  - RawBody: drains the body in chunks of Settings.ResponseChunkSize (4096 by default)

  - ParsedBody: decodes JSON bodies (Content-Type application/json), returns the raw string otherwise

  - Satisfies: evaluates an expression such as `status == 201 && body.title == "x"`

Responses are immutable: WithStatus, WithHeader and friends return a new value.

# Uploads

GenerateUploadFile and GenerateUploadFiles build upload descriptors from paths on disk. The files
argument nests: a field holds a single descriptor, a list, the parallel-array MultiUpload shape, or a
group of further fields. The application sees the same tree with every descriptor replaced by an
*UploadedFile.

# Example Usage

	r := chi.NewRouter()
	r.Get("/test", func(w http.ResponseWriter, r *http.Request) {
	  w.Write([]byte("Hello, world!"))
	})

	client := apptest.NewClient(apptest.NewHandlerApp(r))
	resp, err := client.Request("GET", "/test", nil, nil, nil)
	if err != nil {
	  panic(err)
	}

	raw, _ := resp.RawBody() // Hello, world!

Handlers reach the environment, cookies and uploaded files through RequestFrom:

	req, _ := apptest.RequestFrom(r)
	f, _ := req.UploadedFiles.File("uploadfile")
*/

package apptest
