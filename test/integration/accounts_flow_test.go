// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillboard Contributors

//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

type apiResponse struct {
	status int
	body   map[string]any
}

func postJSON(path string, payload map[string]any) apiResponse {
	data, err := json.Marshal(payload)
	Expect(err).NotTo(HaveOccurred())

	resp, err := http.Post(env.BaseURL+path, "application/json", bytes.NewReader(data))
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = resp.Body.Close() }()

	var body map[string]any
	Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
	return apiResponse{status: resp.StatusCode, body: body}
}

func register(username, email, password, confirm string) apiResponse {
	return postJSON("/api/register", map[string]any{
		"username":        username,
		"email":           email,
		"password":        password,
		"confirmPassword": confirm,
	})
}

func login(username, password string) apiResponse {
	return postJSON("/api/login", map[string]any{
		"username": username,
		"password": password,
	})
}

func getJSON(path, token string) apiResponse {
	req, err := http.NewRequest(http.MethodGet, env.BaseURL+path, nil)
	Expect(err).NotTo(HaveOccurred())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = resp.Body.Close() }()

	var body map[string]any
	Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
	return apiResponse{status: resp.StatusCode, body: body}
}

func fieldErrors(resp apiResponse) map[string]any {
	errs, _ := resp.body["errors"].(map[string]any)
	return errs
}

var _ = Describe("Account flow", func() {
	AfterEach(func() {
		cleanupUsers()
	})

	Describe("registration", func() {
		It("registers a new user and returns a session token", func() {
			resp := register("alice", "alice@prisma.io", "password123", "password123")

			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.body["username"]).To(Equal("alice"))
			Expect(resp.body["email"]).To(Equal("alice@prisma.io"))
			Expect(resp.body["id"]).NotTo(BeEmpty())
			Expect(resp.body["token"]).NotTo(BeEmpty())

			claims, err := env.Issuer.Parse(resp.body["token"].(string))
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Username).To(Equal("alice"))
			Expect(claims.Email).To(Equal("alice@prisma.io"))
			Expect(claims.ID).To(Equal(resp.body["id"]))
		})

		It("never stores the plaintext password", func() {
			register("alice", "alice@prisma.io", "password123", "password123")

			var hash string
			err := env.pool.QueryRow(env.ctx,
				"SELECT password_hash FROM users WHERE username = $1", "alice").Scan(&hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(hash).To(HavePrefix("$2a$12$"))
			Expect(hash).NotTo(ContainSubstring("password123"))
		})

		It("rejects a duplicate username with 409", func() {
			Expect(register("alice", "alice@prisma.io", "password123", "password123").status).
				To(Equal(http.StatusOK))

			resp := register("alice", "other@prisma.io", "different", "different")
			Expect(resp.status).To(Equal(http.StatusConflict))
			Expect(fieldErrors(resp)).To(HaveKeyWithValue("username", "This username is taken"))

			var count int
			err := env.pool.QueryRow(env.ctx,
				"SELECT count(*) FROM users WHERE username = $1", "alice").Scan(&count)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})

		It("reports every validation failure at once", func() {
			resp := register("", "not-an-email", "password123", "different")

			Expect(resp.status).To(Equal(http.StatusBadRequest))
			errs := fieldErrors(resp)
			Expect(errs).To(HaveKeyWithValue("username", "Username must not be empty"))
			Expect(errs).To(HaveKeyWithValue("email", "Email must be a valid email address"))
			Expect(errs).To(HaveKeyWithValue("confirmPassword", "Passwords must match"))
		})

		It("writes nothing on a validation failure", func() {
			register("", "", "", "")

			var count int
			err := env.pool.QueryRow(env.ctx, "SELECT count(*) FROM users").Scan(&count)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})

		It("allows distinct usernames to share an email", func() {
			Expect(register("alice", "shared@prisma.io", "password123", "password123").status).
				To(Equal(http.StatusOK))
			Expect(register("bob", "shared@prisma.io", "password123", "password123").status).
				To(Equal(http.StatusOK))
		})
	})

	Describe("login", func() {
		BeforeEach(func() {
			Expect(register("alice", "alice@prisma.io", "password123", "password123").status).
				To(Equal(http.StatusOK))
		})

		It("issues a fresh session token for valid credentials", func() {
			resp := login("alice", "password123")

			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.body["username"]).To(Equal("alice"))
			Expect(resp.body["token"]).NotTo(BeEmpty())

			claims, err := env.Issuer.Parse(resp.body["token"].(string))
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Username).To(Equal("alice"))
		})

		It("rejects an unknown username with 404", func() {
			resp := login("ghost", "password123")

			Expect(resp.status).To(Equal(http.StatusNotFound))
			Expect(fieldErrors(resp)).To(HaveKeyWithValue("general", "User not found"))
		})

		It("rejects a wrong password with 401", func() {
			resp := login("alice", "wrong-password")

			Expect(resp.status).To(Equal(http.StatusUnauthorized))
			Expect(fieldErrors(resp)).To(HaveKeyWithValue("general", "Wrong credentials"))
		})

		It("treats usernames as case-sensitive", func() {
			resp := login("Alice", "password123")

			Expect(resp.status).To(Equal(http.StatusNotFound))
			Expect(fieldErrors(resp)).To(HaveKeyWithValue("general", "User not found"))
		})

		It("requires both fields", func() {
			resp := login("", "")

			Expect(resp.status).To(Equal(http.StatusBadRequest))
			errs := fieldErrors(resp)
			Expect(errs).To(HaveKeyWithValue("username", "Username must not be empty"))
			Expect(errs).To(HaveKeyWithValue("password", "Password must not be empty"))
		})
	})

	Describe("session introspection", func() {
		var registered apiResponse

		BeforeEach(func() {
			registered = register("alice", "alice@prisma.io", "password123", "password123")
			Expect(registered.status).To(Equal(http.StatusOK))
		})

		It("resolves a session token to its account", func() {
			resp := getJSON("/api/me", registered.body["token"].(string))

			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.body["id"]).To(Equal(registered.body["id"]))
			Expect(resp.body["username"]).To(Equal("alice"))
			Expect(resp.body["email"]).To(Equal("alice@prisma.io"))
			Expect(resp.body).NotTo(HaveKey("token"))
		})

		It("rejects a garbage token with 401", func() {
			resp := getJSON("/api/me", "not.a.token")

			Expect(resp.status).To(Equal(http.StatusUnauthorized))
			Expect(resp.body["message"]).To(Equal("Wrong credentials"))
		})

		It("rejects a missing token with 401", func() {
			resp := getJSON("/api/me", "")

			Expect(resp.status).To(Equal(http.StatusUnauthorized))
		})

		It("rejects a token for a deleted account with 404", func() {
			cleanupUsers()

			resp := getJSON("/api/me", registered.body["token"].(string))
			Expect(resp.status).To(Equal(http.StatusNotFound))
		})
	})
})
