// Package http provides request and response helpers for route handlers.
//
//	func (c *UserController) Store(w http.ResponseWriter, r *http.Request) (any, error) {
//	    req := gohttp.NewRequest(r)
//	    if err := req.Validate(validation.Rules{"name": "required|min:2"}); err != nil {
//	        return nil, err // the router answers 422
//	    }
//	    return map[string]string{"name": req.Input("name")}, nil
//	}
//
// Request covers body binding, input lookup, chi route parameters and
// headers. Response writes JSON envelopes:
//
//	res.Success(data)         // 200 {"data": ...}
//	res.Created(data)         // 201 {"data": ...}
//	res.NoContent()           // 204
//	res.Error(400, "bad")     // {"message": "bad"}
//	res.ValidationError(errs) // 422 {"errors": {"field": ["msg"]}}
//	res.Fail(err, debug)      // 422 for validation errors, 500 otherwise
package http
