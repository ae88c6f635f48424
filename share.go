package main

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/cheggaaa/pb/v3"
)

const (
	defaultBase = "https://cloud.tsinghua.edu.cn"
	userAgent   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/109.0.0.0 Safari/537.36 SeafileShare-Uploader"
)

// shareClient holds the one cookie session an upload runs on. Cookies set
// while fetching and authenticating the share page are what make the ajax
// and upload endpoints accept the later calls, so every stage goes through
// the same client.
type shareClient struct {
	hc    *http.Client
	base  string
	token string
}

func newShareClient(base, token string) *shareClient {
	jar, _ := cookiejar.New(nil)
	// No client timeout: large uploads over slow links must be allowed
	// to finish.
	return &shareClient{
		hc:    &http.Client{Jar: jar},
		base:  strings.TrimSuffix(base, "/"),
		token: token,
	}
}

func (c *shareClient) shareURL() string {
	return fmt.Sprintf("%s/u/d/%s/", c.base, c.token)
}

// run drives the whole pipeline: landing page, password form, session id,
// upload url, multipart upload. Strictly single-pass; the first failing
// stage aborts the run.
func (c *shareClient) run(filePath, password string) (*uploadEntry, error) {
	if !isExist(filePath) {
		return nil, errFileNotFound
	}
	doc, err := c.fetchSharePage()
	if err != nil {
		return nil, err
	}
	formToken, err := extractFormToken(doc)
	if err != nil {
		return nil, err
	}
	doc, err = c.submitPassword(formToken, password)
	if err != nil {
		return nil, err
	}
	sessionID, err := extractSessionID(doc)
	if err != nil {
		return nil, err
	}
	uploadURL, err := c.getUploadURL(sessionID)
	if err != nil {
		return nil, err
	}
	return c.uploadFile(uploadURL, filePath)
}

func (c *shareClient) do(req *http.Request, op string) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	log.Debugf("endpoint: %s", req.URL)
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &netError{op: op, err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, &netError{op: op, err: fmt.Errorf("abnormal http return code: %d", resp.StatusCode)}
	}
	return resp, nil
}

func (c *shareClient) fetchSharePage() (*goquery.Document, error) {
	req, err := http.NewRequest("GET", c.shareURL(), nil)
	if err != nil {
		return nil, &netError{op: "fetch share page", err: err}
	}
	resp, err := c.do(req, "fetch share page")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse share page: %w", err)
	}
	return doc, nil
}

// submitPassword posts the password form. The service answers with the
// authenticated page no matter whether the password was right; correctness
// only shows up downstream, when the session id is (or is not) on the page.
func (c *shareClient) submitPassword(formToken, password string) (*goquery.Document, error) {
	form := url.Values{
		"csrfmiddlewaretoken": {formToken},
		"token":               {c.token},
		"password":            {password},
	}
	req, err := http.NewRequest("POST", c.shareURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &netError{op: "submit password", err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", c.shareURL())
	resp, err := c.do(req, "submit password")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse authenticated page: %w", err)
	}
	return doc, nil
}

func (c *shareClient) getUploadURL(sessionID string) (string, error) {
	link := fmt.Sprintf("%s/ajax/u/d/%s/upload/?r=%s&_=%d",
		c.base, c.token, sessionID, time.Now().UnixMilli())
	req, err := http.NewRequest("GET", link, nil)
	if err != nil {
		return "", &netError{op: "get upload url", err: err}
	}
	// The server serves the page instead of JSON without this marker.
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	resp, err := c.do(req, "get upload url")
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "json") {
		return "", errMalformedResponse
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &netError{op: "get upload url", err: err}
	}
	log.Debugf("returns: %s", body)
	return parseUploadURL(body)
}

func (c *shareClient) uploadFile(uploadURL, filePath string) (*uploadEntry, error) {
	info, err := getFileInfo(filePath)
	if err != nil {
		return nil, errFileNotFound
	}
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errFileNotFound
	}
	defer func() {
		_ = file.Close()
	}()

	var payload io.Reader = file
	var bar *pb.ProgressBar
	if !runConfig.silentMode {
		bar = pb.Full.Start64(info.Size())
		bar.Set(pb.Bytes, true)
		payload = bar.NewProxyReader(file)
	}

	// Stream the multipart body so the file is never buffered whole.
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		if err := writer.WriteField("parent_dir", "/"); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		part, err := writer.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, payload); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = writer.Close()
		_ = pw.Close()
	}()

	req, err := http.NewRequest("POST", uploadURL, pr)
	if err != nil {
		return nil, &netError{op: "upload file", err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := c.do(req, "upload file")
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &netError{op: "upload file", err: err}
	}
	log.Debugf("returns: %s", body)
	return parseUploadEntries(body)
}
