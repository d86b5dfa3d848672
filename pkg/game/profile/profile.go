package profile

import (
	"crypto/md5"
	"strconv"

	"github.com/google/uuid"
)

type UserType string

const (
	UserTypeMSA    UserType = "msa"
	UserTypeMojang UserType = "mojang"
	UserTypeLegacy UserType = "legacy"
)

// AuthInfo is the credential bundle produced by an authentication provider.
type AuthInfo struct {
	Username    string   `json:"username"`
	UUID        string   `json:"uuid"`
	AccessToken string   `json:"accessToken"`
	UserType    UserType `json:"userType"`
}

// Offline builds credentials for offline play. The uuid matches the one
// servers in offline mode derive from the name.
func Offline(username string) AuthInfo {
	return AuthInfo{
		Username:    username,
		UUID:        OfflineUUID(username),
		AccessToken: "0",
		UserType:    UserTypeLegacy,
	}
}

// OfflineUUID is the version 3 (name based, md5) uuid of "OfflinePlayer:<name>".
func OfflineUUID(username string) string {
	sum := md5.Sum([]byte("OfflinePlayer:" + username))
	sum[6] = sum[6]&0x0f | 0x30
	sum[8] = sum[8]&0x3f | 0x80
	return uuid.UUID(sum).String()
}

type Memory struct {
	MaxMB int `json:"maxMb"`
	MinMB int `json:"minMb"`
}

// MemoryFor gives the heap a floor of half its maximum.
func MemoryFor(maxMB int) Memory {
	return Memory{MaxMB: maxMB, MinMB: maxMB / 2}
}

func (m Memory) ToArgs() []string {
	args := []string{"-Xmx" + strconv.Itoa(m.MaxMB) + "M"}
	if m.MinMB > 0 {
		args = append(args, "-Xms"+strconv.Itoa(m.MinMB)+"M")
	}
	return args
}
