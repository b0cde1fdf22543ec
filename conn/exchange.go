package conn

// exchange is a request paired with the response being accumulated for it. The pair is
// created and retired as a whole.
type exchange struct {
	req  Request
	resp Response
}

func newExchange(req Request, resp Response) *exchange {
	return &exchange{req: req, resp: resp}
}

// retire completes the request and releases both halves. The response is passed only if
// the exchange succeeded. Subsequent calls are no-op.
func (e *exchange) retire(err error) {
	if e.req == nil {
		return
	}

	req, resp := e.req, e.resp
	e.req, e.resp = nil, nil

	if err != nil {
		req.Complete(nil, err)
	} else {
		req.Complete(resp, nil)
	}

	release(req)
	release(resp)
}

func release(v any) {
	if r, ok := v.(Releaser); ok {
		r.Release()
	}
}
